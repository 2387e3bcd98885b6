package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globalyuen/achievepack-outreach/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

// --- Automation state ---

func TestSQLite_AutomationState_Defaults(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	state, err := st.GetAutomationState(ctx)
	require.NoError(t, err)
	assert.False(t, state.IsRunning)
	assert.Nil(t, state.LastRunAt)
}

func TestSQLite_AutomationState_Toggle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetAutomationRunning(ctx, true))

	state, err := st.GetAutomationState(ctx)
	require.NoError(t, err)
	assert.True(t, state.IsRunning)

	require.NoError(t, st.SetAutomationRunning(ctx, false))

	state, err = st.GetAutomationState(ctx)
	require.NoError(t, err)
	assert.False(t, state.IsRunning)
}

func TestSQLite_AutomationState_LastRunAt(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.SetLastRunAt(ctx, ts))

	state, err := st.GetAutomationState(ctx)
	require.NoError(t, err)
	require.NotNil(t, state.LastRunAt)
	assert.True(t, state.LastRunAt.Equal(ts))
}

func TestSQLite_AutomationState_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetAutomationRunning(ctx, true))
	// Re-running migrations must not reset the singleton row.
	require.NoError(t, st.Migrate(ctx))

	state, err := st.GetAutomationState(ctx)
	require.NoError(t, err)
	assert.True(t, state.IsRunning)
}

// --- Search runs ---

func TestSQLite_SearchRun_CreateAndComplete(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateSearchRun(ctx, "custom coffee bags", "daisy")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusProcessing, run.Status)

	err = st.CompleteSearchRun(ctx, run.ID, model.RunTotals{TotalResults: 10, EmailsFound: 4, EmailsSent: 2})
	require.NoError(t, err)

	got, err := st.GetSearchRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusCompleted, got.Status)
	assert.Equal(t, 10, got.TotalResults)
	assert.Equal(t, 4, got.EmailsFound)
	assert.Equal(t, 2, got.EmailsSent)
	assert.Equal(t, "custom coffee bags", got.Query)
	assert.Equal(t, "daisy", got.Sender)
}

func TestSQLite_SearchRun_CompleteMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.CompleteSearchRun(context.Background(), "no-such-run", model.RunTotals{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_SearchRun_List(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	r1, err := st.CreateSearchRun(ctx, "query one", "daisy")
	require.NoError(t, err)
	_, err = st.CreateSearchRun(ctx, "query two", "ken")
	require.NoError(t, err)

	runs, err := st.ListSearchRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	require.NoError(t, st.CompleteSearchRun(ctx, r1.ID, model.RunTotals{}))

	completed, err := st.ListSearchRuns(ctx, RunFilter{Status: model.RunStatusCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, r1.ID, completed[0].ID)
}

// --- Prospects ---

func TestSQLite_Prospect_CreateAndMarkSent(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateSearchRun(ctx, "stand up pouches", "daisy")
	require.NoError(t, err)

	p, err := st.CreateProspect(ctx, &model.Prospect{
		SearchRunID:  run.ID,
		Name:         "Sunrise Coffee Co. - Shop Online",
		CleanName:    "Sunrise Coffee",
		Website:      "https://sunrisecoffee.com",
		Email:        "Hello@SunriseCoffee.com",
		BusinessType: "coffee packaging",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.EmailSent)
	// Emails are stored lowercased for the history/suppression lookups.
	assert.Equal(t, "hello@sunrisecoffee.com", p.Email)

	sentAt := time.Now().UTC()
	err = st.MarkProspectSent(ctx, p.ID, sentAt, "msg_123", "Subject: hi\n\nbody")
	require.NoError(t, err)

	prospects, err := st.ListProspects(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, prospects, 1)
	assert.True(t, prospects[0].EmailSent)
	require.NotNil(t, prospects[0].EmailSentAt)
	assert.Equal(t, "msg_123", prospects[0].ProviderMessageID)
	assert.Equal(t, "Subject: hi\n\nbody", prospects[0].RenderedMessage)
}

func TestSQLite_Prospect_MarkSentMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.MarkProspectSent(context.Background(), "no-such-prospect", time.Now(), "msg", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

// --- Suppression ---

func TestSQLite_Suppression_CaseInsensitive(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	suppressed, err := st.IsSuppressed(ctx, "optout@example.com")
	require.NoError(t, err)
	assert.False(t, suppressed)

	require.NoError(t, st.AddSuppression(ctx, "OptOut@Example.COM"))

	suppressed, err = st.IsSuppressed(ctx, "optout@example.com")
	require.NoError(t, err)
	assert.True(t, suppressed)

	suppressed, err = st.IsSuppressed(ctx, "OPTOUT@EXAMPLE.COM")
	require.NoError(t, err)
	assert.True(t, suppressed)
}

func TestSQLite_Suppression_AddTwice(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddSuppression(ctx, "dup@example.com"))
	require.NoError(t, st.AddSuppression(ctx, "dup@example.com"))
}

// --- Contact history ---

func TestSQLite_WasContacted_OnlySentCounts(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateSearchRun(ctx, "mylar bags", "ken")
	require.NoError(t, err)

	p, err := st.CreateProspect(ctx, &model.Prospect{
		SearchRunID:  run.ID,
		Name:         "Acme Foods",
		CleanName:    "Acme Foods",
		Website:      "https://acmefoods.com",
		Email:        "info@acmefoods.com",
		BusinessType: "food packaging",
	})
	require.NoError(t, err)

	// Unsent prospect rows must not count as contacted.
	contacted, err := st.WasContacted(ctx, "info@acmefoods.com")
	require.NoError(t, err)
	assert.False(t, contacted)

	require.NoError(t, st.MarkProspectSent(ctx, p.ID, time.Now().UTC(), "msg_1", "hello"))

	contacted, err = st.WasContacted(ctx, "Info@AcmeFoods.com")
	require.NoError(t, err)
	assert.True(t, contacted)
}
