package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/mcoot/killergame/internal/storage"
)

// ErrStoreDown is returned by a FlakyStore that has been told to fail
var ErrStoreDown = errors.New("store is down")

// FlakyStore wraps a store, counts calls and can be switched to failing
type FlakyStore struct {
	mu         sync.Mutex
	inner      storage.Store
	failReads  bool
	failWrites bool
	reads      int
	writes     int

	// BeforeWrite, if set, runs before each UpdateCells reaches the inner store
	BeforeWrite func()
}

// NewFlakyStore wraps inner
func NewFlakyStore(inner storage.Store) *FlakyStore {
	return &FlakyStore{inner: inner}
}

var _ storage.Store = (*FlakyStore)(nil)

// FailReads makes ReadSheet fail
func (f *FlakyStore) FailReads(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failReads = fail
}

// FailWrites makes UpdateCells fail
func (f *FlakyStore) FailWrites(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrites = fail
}

// Reads returns the number of ReadSheet calls
func (f *FlakyStore) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// Writes returns the number of UpdateCells calls
func (f *FlakyStore) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *FlakyStore) ReadSheet(ctx context.Context) (*storage.Sheet, error) {
	f.mu.Lock()
	f.reads++
	fail := f.failReads
	f.mu.Unlock()
	if fail {
		return nil, ErrStoreDown
	}
	return f.inner.ReadSheet(ctx)
}

func (f *FlakyStore) UpdateCells(ctx context.Context, updates []storage.CellUpdate) error {
	f.mu.Lock()
	f.writes++
	fail := f.failWrites
	hook := f.BeforeWrite
	f.mu.Unlock()
	if fail {
		return ErrStoreDown
	}
	if hook != nil {
		hook()
	}
	return f.inner.UpdateCells(ctx, updates)
}
