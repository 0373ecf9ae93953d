package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/worklog-engine/store/sqlite"
	"github.com/warp/worklog-engine/worklog"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func candidate(date string, hours float64, reason string) worklog.Candidate {
	return worklog.Candidate{
		Date:          date,
		DurationHours: worklog.Hours(hours),
		Reason:        reason,
	}
}

// =============================================================================
// WORKLOG CRUD TESTS
// =============================================================================

func TestStore_CreateAndList(t *testing.T) {
	// GIVEN: An empty database
	// WHEN: Creating records through an owner view
	// THEN: They round-trip with exact decimal hours

	store := newTestStore(t)
	logs := store.Owner("user-1")
	ctx := context.Background()

	created, err := logs.Create(ctx, worklog.Candidate{
		Date:          "2024-03-10",
		DurationHours: worklog.Hours(1.5),
		Reason:        "deploy",
		Notes:         "ran long",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	records, err := logs.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, created.ID, records[0].ID)
	assert.Equal(t, "2024-03-10", records[0].Date)
	assert.Equal(t, "1.5", records[0].DurationHours.String())
	assert.Equal(t, "deploy", records[0].Reason)
	assert.Equal(t, "ran long", records[0].Notes)
}

func TestStore_DatePreservesStoredEncoding(t *testing.T) {
	// GIVEN: A record stored under a legacy serial date
	// WHEN: Listing
	// THEN: The raw encoding survives; normalization is the engine's job

	store := newTestStore(t)
	logs := store.Owner("user-1")
	ctx := context.Background()

	_, err := logs.Create(ctx, candidate("45361", 2, "imported"))
	require.NoError(t, err)

	records, err := logs.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "45361", records[0].Date)

	day, err := records[0].Day()
	require.NoError(t, err)
	assert.Equal(t, worklog.NewCalendarDay(2024, time.March, 10), day)
}

func TestStore_Update(t *testing.T) {
	store := newTestStore(t)
	logs := store.Owner("user-1")
	ctx := context.Background()

	created, err := logs.Create(ctx, candidate("2024-03-10", 2, "deploy"))
	require.NoError(t, err)

	updated, err := logs.Update(ctx, created.ID, candidate("2024-03-10", 4, "deploy overran"))
	require.NoError(t, err)
	assert.Equal(t, "4", updated.DurationHours.String())

	records, err := logs.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "deploy overran", records[0].Reason)
}

func TestStore_UpdateMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Owner("user-1").Update(context.Background(), "wl-999",
		candidate("2024-03-10", 1, "x"))
	assert.ErrorIs(t, err, worklog.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	logs := store.Owner("user-1")
	ctx := context.Background()

	created, err := logs.Create(ctx, candidate("2024-03-10", 2, "deploy"))
	require.NoError(t, err)

	require.NoError(t, logs.Delete(ctx, created.ID))
	assert.ErrorIs(t, logs.Delete(ctx, created.ID), worklog.ErrNotFound)

	records, err := logs.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

// =============================================================================
// OWNER SCOPING TESTS
// =============================================================================

func TestStore_OwnersAreIsolated(t *testing.T) {
	// GIVEN: Two owners with their own records
	// WHEN: One owner lists, updates, or deletes
	// THEN: The other owner's records are invisible and untouchable

	store := newTestStore(t)
	ctx := context.Background()
	alice := store.Owner("user-alice")
	bob := store.Owner("user-bob")

	aliceRec, err := alice.Create(ctx, candidate("2024-03-10", 2, "alice's deploy"))
	require.NoError(t, err)
	_, err = bob.Create(ctx, candidate("2024-03-11", 1, "bob's deploy"))
	require.NoError(t, err)

	aliceRecords, err := alice.List(ctx)
	require.NoError(t, err)
	require.Len(t, aliceRecords, 1)
	assert.Equal(t, "alice's deploy", aliceRecords[0].Reason)

	// Bob cannot reach Alice's record by id.
	_, err = bob.Update(ctx, aliceRec.ID, candidate("2024-03-10", 9, "hijack"))
	assert.ErrorIs(t, err, worklog.ErrNotFound)
	assert.ErrorIs(t, bob.Delete(ctx, aliceRec.ID), worklog.ErrNotFound)
}

// =============================================================================
// USER TESTS
// =============================================================================

func TestStore_CreateAndGetUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := sqlite.User{
		ID:           "user-1",
		Username:     "amy",
		PasswordHash: "$2a$10$fakehash",
		DisplayName:  "Amy",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, store.CreateUser(ctx, u))

	byName, err := store.GetUserByUsername(ctx, "amy")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, "user-1", byName.ID)
	assert.Equal(t, "$2a$10$fakehash", byName.PasswordHash)

	byID, err := store.GetUser(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "amy", byID.Username)
}

func TestStore_GetUserMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)
	u, err := store.GetUserByUsername(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestStore_DuplicateUsernameFails(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := sqlite.User{ID: "user-1", Username: "amy", PasswordHash: "h", DisplayName: "Amy", CreatedAt: time.Now()}
	require.NoError(t, store.CreateUser(ctx, u))

	dup := u
	dup.ID = "user-2"
	assert.Error(t, store.CreateUser(ctx, dup))
}

// =============================================================================
// TOKEN TESTS
// =============================================================================

func TestStore_TokenLifecycle(t *testing.T) {
	// GIVEN: A saved session token
	// WHEN: Resolving, then deleting it
	// THEN: It maps to its user until deleted, then resolves to empty

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveToken(ctx, "tok-abc", "user-1"))

	userID, err := store.UserForToken(ctx, "tok-abc", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	unknown, err := store.UserForToken(ctx, "tok-unknown", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "", unknown)

	require.NoError(t, store.DeleteToken(ctx, "tok-abc"))
	gone, err := store.UserForToken(ctx, "tok-abc", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "", gone)
}

func TestStore_TokenExpiry(t *testing.T) {
	// GIVEN: A token older than the TTL
	// WHEN: Resolving it
	// THEN: It no longer maps to a user and is removed from the table

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveToken(ctx, "tok-old", "user-1"))

	// Any positive TTL has elapsed by the time the lookup runs.
	expired, err := store.UserForToken(ctx, "tok-old", time.Nanosecond)
	require.NoError(t, err)
	assert.Equal(t, "", expired)

	// The expired token is gone even for a lookup with no age bound.
	gone, err := store.UserForToken(ctx, "tok-old", 0)
	require.NoError(t, err)
	assert.Equal(t, "", gone)
}

func TestStore_TokenTTLZeroDisablesExpiry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveToken(ctx, "tok-abc", "user-1"))

	userID, err := store.UserForToken(ctx, "tok-abc", 0)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

// =============================================================================
// ID GENERATION TESTS
// =============================================================================

func TestNewID_UniqueUnderBursts(t *testing.T) {
	// GIVEN: Many ids generated back to back
	// WHEN: Collecting them
	// THEN: No collisions, unlike timestamp-derived ids

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := sqlite.NewID("wl")
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestStore_CreateBurstAssignsDistinctIDs(t *testing.T) {
	store := newTestStore(t)
	logs := store.Owner("user-1")
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		rec, err := logs.Create(ctx, candidate("2024-03-10", 1, "burst"))
		require.NoError(t, err)
		assert.False(t, seen[rec.ID])
		seen[rec.ID] = true
	}
}
