package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/killergame/internal/dependencies/mocks"
)

type CacheSuite struct {
	suite.Suite
	clock *mocks.MockClock
	cache *Cache[string]
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.cache = New[string](s.clock)
}

func (s *CacheSuite) TestEmptyMisses() {
	_, ok := s.cache.Get(time.Minute)
	s.False(ok)
}

func (s *CacheSuite) TestHitWithinTTL() {
	s.cache.Set("snapshot")
	s.clock.Advance(9 * time.Second)

	v, ok := s.cache.Get(10 * time.Second)
	s.True(ok)
	s.Equal("snapshot", v)
}

func (s *CacheSuite) TestExpiresAtTTL() {
	s.cache.Set("snapshot")
	s.clock.Advance(10 * time.Second)

	_, ok := s.cache.Get(10 * time.Second)
	s.False(ok)
}

func (s *CacheSuite) TestZeroTTLDisablesCaching() {
	s.cache.Set("snapshot")
	_, ok := s.cache.Get(0)
	s.False(ok)
}

func (s *CacheSuite) TestInvalidate() {
	s.cache.Set("snapshot")
	s.cache.Invalidate()

	_, ok := s.cache.Get(time.Hour)
	s.False(ok)
}

func (s *CacheSuite) TestSetIfUnchangedRejectsStaleRead() {
	gen := s.cache.Generation()
	s.cache.Invalidate()

	s.False(s.cache.SetIfUnchanged(gen, "stale"))
	_, ok := s.cache.Get(time.Hour)
	s.False(ok)

	s.True(s.cache.SetIfUnchanged(s.cache.Generation(), "fresh"))
	v, ok := s.cache.Get(time.Hour)
	s.True(ok)
	s.Equal("fresh", v)
}
