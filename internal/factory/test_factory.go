package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/killergame/internal/dependencies/mocks"
	"github.com/mcoot/killergame/internal/lock"
	"github.com/mcoot/killergame/internal/services/auth"
	"github.com/mcoot/killergame/internal/storage/memory"
	"github.com/mcoot/killergame/internal/testutil"
)

// Credentials accepted by a TestApp
const (
	TestSecret              = "test-secret"
	TestMaintenanceNickname = "operator"
	TestMaintenancePassword = "letmein"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Memory is the backing store, Flaky wraps it and can simulate outages
	Memory *memory.Storage
	Flaky  *testutil.FlakyStore

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The snapshot cache is disabled so tests observe every write.
func NewTestApp(seeds ...testutil.Seed) *TestApp {
	store := testutil.NewMemoryStore(seeds...)
	flaky := testutil.NewFlakyStore(store)
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestMaintenancePassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	authCfg := auth.DefaultConfig()
	authCfg.Secret = []byte(TestSecret)
	authCfg.MaintenanceNickname = TestMaintenanceNickname
	authCfg.MaintenancePasswordHash = string(hash)

	app, err := newWithDependencies(flaky, lock.NewLocal(time.Second), mockClock, mockRandom, 0, authCfg, testutil.NopLogger())
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		Memory:     store,
		Flaky:      flaky,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
