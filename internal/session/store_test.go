package session

import (
	"context"
	"sync"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/skylink-gateway/internal/credstore"
	"github.com/spec-kit/skylink-gateway/internal/domain"
	"github.com/spec-kit/skylink-gateway/internal/events"
	"github.com/spec-kit/skylink-gateway/internal/token"
)

var testNow = time.Unix(1700000000, 0)

const testSessionID = "sess-1"

func mintCredential(t *testing.T, role string, expiresAt time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  role + "@skylink.test",
		"role": role,
		"exp":  expiresAt.Unix(),
	})
	signed, err := tok.SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return signed
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]events.EventType, 0, len(r.events))
	for _, event := range r.events {
		types = append(types, event.Type)
	}
	return types
}

func newTestManager(t *testing.T) (*Manager, *credstore.MemoryKeyed, *eventRecorder) {
	t.Helper()
	keyed := credstore.NewMemoryKeyed()
	validator := token.NewValidator(func() time.Time { return testNow })
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())

	recorder := &eventRecorder{}
	dispatcher.Subscribe(events.EventSessionStarted, recorder.record)
	dispatcher.Subscribe(events.EventSessionEnded, recorder.record)
	dispatcher.Subscribe(events.EventCredentialExpired, recorder.record)

	return NewManager(keyed, validator, dispatcher, zap.NewNop()), keyed, recorder
}

func TestHydrateRestoresValidCredential(t *testing.T) {
	ctx := context.Background()
	mgr, keyed, _ := newTestManager(t)

	credential := mintCredential(t, "passenger", testNow.Add(time.Hour))
	require.NoError(t, keyed.For(testSessionID).Save(ctx, credential))

	store := mgr.Session(testSessionID)
	require.NoError(t, store.Hydrate(ctx))

	identity, ok := store.Identity()
	require.True(t, ok)
	assert.Equal(t, domain.RolePassenger, identity.Role)
}

func TestHydrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	mgr, keyed, _ := newTestManager(t)

	credential := mintCredential(t, "passenger", testNow.Add(time.Hour))
	require.NoError(t, keyed.For(testSessionID).Save(ctx, credential))

	store := mgr.Session(testSessionID)
	require.NoError(t, store.Hydrate(ctx))
	first, ok := store.Identity()
	require.True(t, ok)

	// swapping the persisted credential must not change an already hydrated
	// session; only login/logout mutate it
	require.NoError(t, keyed.For(testSessionID).Save(ctx, mintCredential(t, "staff", testNow.Add(time.Hour))))
	require.NoError(t, store.Hydrate(ctx))

	second, ok := store.Identity()
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestHydratePurgesExpiredCredential(t *testing.T) {
	ctx := context.Background()
	mgr, keyed, recorder := newTestManager(t)

	expired := mintCredential(t, "passenger", testNow.Add(-10*time.Second))
	require.NoError(t, keyed.For(testSessionID).Save(ctx, expired))

	store := mgr.Session(testSessionID)
	require.NoError(t, store.Hydrate(ctx))

	_, ok := store.Identity()
	assert.False(t, ok)

	persisted, err := keyed.For(testSessionID).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, persisted)

	assert.Contains(t, recorder.types(), events.EventCredentialExpired)

	// the expiry event also evicts the cached store
	assert.NotSame(t, store, mgr.Session(testSessionID))
}

func TestHydratePurgesMalformedCredential(t *testing.T) {
	ctx := context.Background()
	mgr, keyed, _ := newTestManager(t)

	require.NoError(t, keyed.For(testSessionID).Save(ctx, "not-a-credential"))

	store := mgr.Session(testSessionID)
	require.NoError(t, store.Hydrate(ctx))

	_, ok := store.Identity()
	assert.False(t, ok)

	persisted, err := keyed.For(testSessionID).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestLoginPersistsAndSetsIdentity(t *testing.T) {
	ctx := context.Background()
	mgr, keyed, recorder := newTestManager(t)

	credential := mintCredential(t, "staff", testNow.Add(time.Hour))
	store := mgr.Session(testSessionID)

	identity, err := store.Login(ctx, credential)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, identity.Role)

	persisted, err := keyed.For(testSessionID).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, credential, persisted)

	assert.Equal(t, []events.EventType{events.EventSessionStarted}, recorder.types())
}

func TestLoginWithBrokenCredential(t *testing.T) {
	ctx := context.Background()
	mgr, keyed, recorder := newTestManager(t)

	store := mgr.Session(testSessionID)
	identity, err := store.Login(ctx, "broken-token-from-upstream")

	assert.ErrorIs(t, err, ErrPostLoginDecode)
	assert.Nil(t, identity)

	_, ok := store.Identity()
	assert.False(t, ok)

	// the unusable credential must not linger and feed a redirect loop
	persisted, loadErr := keyed.For(testSessionID).Load(ctx)
	require.NoError(t, loadErr)
	assert.Empty(t, persisted)

	assert.Empty(t, recorder.types())
}

func TestLogoutClearsCompletely(t *testing.T) {
	ctx := context.Background()
	mgr, keyed, recorder := newTestManager(t)

	store := mgr.Session(testSessionID)
	_, err := store.Login(ctx, mintCredential(t, "passenger", testNow.Add(time.Hour)))
	require.NoError(t, err)

	target, err := store.Logout(ctx)
	require.NoError(t, err)
	assert.Equal(t, PublicRoot, target)

	_, ok := store.Identity()
	assert.False(t, ok)

	persisted, err := keyed.For(testSessionID).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, persisted)

	assert.Contains(t, recorder.types(), events.EventSessionEnded)
}

func TestManagerReturnsSameStoreUntilDropped(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	first := mgr.Session(testSessionID)
	assert.Same(t, first, mgr.Session(testSessionID))

	mgr.Drop(testSessionID)
	assert.NotSame(t, first, mgr.Session(testSessionID))
}
