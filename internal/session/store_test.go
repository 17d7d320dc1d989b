package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge-app/skillbridge-api/internal/models"
	"github.com/skillbridge-app/skillbridge-api/pkg/config"
)

type flakyFetcher struct {
	mu       sync.Mutex
	failures int
	calls    int
	profile  *models.Profile
}

func (f *flakyFetcher) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("profile row not visible yet")
	}
	return f.profile, nil
}

func (f *flakyFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testConfig() config.SessionConfig {
	return config.SessionConfig{ProfileFetchRetries: 3, ProfileFetchDelay: 5 * time.Millisecond}
}

func TestSignInNotifiesSubscribers(t *testing.T) {
	store := NewStore(&flakyFetcher{}, testConfig(), nil)

	var events []Session
	store.Subscribe(func(s Session) { events = append(events, s) })

	store.SignIn("usr-1", "jane@example.com", models.RoleStudent)
	require.Len(t, events, 1)
	assert.Equal(t, "usr-1", events[0].UserID)
	assert.Nil(t, events[0].Profile)

	session, ok := store.Get("usr-1")
	require.True(t, ok)
	assert.Equal(t, models.RoleStudent, session.Role)
}

func TestRehydrateRetriesUntilProfileAppears(t *testing.T) {
	fetcher := &flakyFetcher{failures: 2, profile: &models.Profile{ID: "usr-1", FirstName: "Jane"}}
	store := NewStore(fetcher, testConfig(), nil)
	store.SignIn("usr-1", "jane@example.com", models.RoleStudent)

	err := store.Rehydrate(context.Background(), "usr-1")
	require.NoError(t, err)
	assert.Equal(t, 3, fetcher.callCount())

	session, ok := store.Get("usr-1")
	require.True(t, ok)
	require.NotNil(t, session.Profile)
	assert.Equal(t, "Jane", session.Profile.FirstName)
}

func TestRehydrateGivesUpAfterRetries(t *testing.T) {
	fetcher := &flakyFetcher{failures: 10}
	store := NewStore(fetcher, testConfig(), nil)
	store.SignIn("usr-1", "jane@example.com", models.RoleStudent)

	err := store.Rehydrate(context.Background(), "usr-1")
	require.Error(t, err)
	assert.Equal(t, 3, fetcher.callCount())

	session, _ := store.Get("usr-1")
	assert.Nil(t, session.Profile)
}

func TestRehydrateNotifiesSubscribers(t *testing.T) {
	fetcher := &flakyFetcher{profile: &models.Profile{ID: "usr-1", FirstName: "Jane"}}
	store := NewStore(fetcher, testConfig(), nil)
	store.SignIn("usr-1", "jane@example.com", models.RoleStudent)

	var events []Session
	store.Subscribe(func(s Session) { events = append(events, s) })

	require.NoError(t, store.Rehydrate(context.Background(), "usr-1"))
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Profile)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	store := NewStore(&flakyFetcher{}, testConfig(), nil)

	var events []Session
	id := store.Subscribe(func(s Session) { events = append(events, s) })
	store.Unsubscribe(id)

	store.SignIn("usr-1", "jane@example.com", models.RoleStudent)
	assert.Empty(t, events)
}

func TestSignOutClearsSessionAndNotifies(t *testing.T) {
	store := NewStore(&flakyFetcher{}, testConfig(), nil)
	store.SignIn("usr-1", "jane@example.com", models.RoleStudent)

	var events []Session
	store.Subscribe(func(s Session) { events = append(events, s) })

	store.SignOut("usr-1")
	_, ok := store.Get("usr-1")
	assert.False(t, ok)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].Profile)

	// Signing out an unknown user is a no-op.
	store.SignOut("usr-2")
	assert.Len(t, events, 1)
}
