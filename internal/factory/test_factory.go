package factory

import (
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Ayu-zh/placement-connector/internal/dependencies/mocks"
	"github.com/Ayu-zh/placement-connector/internal/services/identity"
	"github.com/Ayu-zh/placement-connector/internal/storage/memory"
)

// TestTokenSecret signs tokens in test apps
var TestTokenSecret = []byte("test-token-secret")

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Memory     *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	cfg := identity.DefaultConfig()
	cfg.TokenSecret = TestTokenSecret
	cfg.BcryptCost = bcrypt.MinCost

	app, err := newWithDependencies(store, mockClock, mockRandom, cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		// Only fails on a missing secret
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Memory:     store,
	}
}
