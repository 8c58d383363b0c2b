package reflection

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/empowher/empowher-server/internal/model"
	"github.com/empowher/empowher-server/internal/store"
	"github.com/empowher/empowher-server/internal/store/sqlite"
)

func testStore(t *testing.T) store.Store {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "reflection.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlite.NewWithDB(db)
}

func TestAdjust(t *testing.T) {
	assert.InDelta(t, 0.70, Adjust(0.6, 5), 1e-9)
	assert.InDelta(t, 0.65, Adjust(0.6, 4), 1e-9)
	assert.InDelta(t, 0.60, Adjust(0.6, 3), 1e-9)
	assert.InDelta(t, 0.50, Adjust(0.6, 1), 1e-9)
	// Clamped at both ends.
	assert.InDelta(t, 1.0, Adjust(0.98, 5), 1e-9)
	assert.InDelta(t, 0.0, Adjust(0.05, 1), 1e-9)
}

func TestRecorder_Record(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	r := NewRecorder(s, zerolog.Nop())

	dec, err := s.Decisions().Create(ctx, &model.AgentDecision{
		UserID:     "u1",
		AgentName:  "intervention",
		Confidence: 0.6,
	})
	require.NoError(t, err)

	rating := 5
	outcome, err := r.Record(ctx, "u1", &OutcomeRequest{
		DecisionID: dec.DecisionID,
		Action:     "guided_breathing",
		Completed:  true,
		Rating:     &rating,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, outcome.OutcomeID)
	assert.NotNil(t, outcome.CompletionTime)

	analytics, err := r.Analytics(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, analytics, 1)
	assert.Equal(t, "guided_breathing", analytics[0].Action)
	assert.Equal(t, 1, analytics[0].Completed)
}

func TestRecorder_UnknownDecision(t *testing.T) {
	r := NewRecorder(testStore(t), zerolog.Nop())
	_, err := r.Record(context.Background(), "u1", &OutcomeRequest{DecisionID: "missing", Action: "x"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRecorder_WrongUser(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	r := NewRecorder(s, zerolog.Nop())

	dec, err := s.Decisions().Create(ctx, &model.AgentDecision{UserID: "u1", AgentName: "intervention"})
	require.NoError(t, err)

	_, err = r.Record(ctx, "u2", &OutcomeRequest{DecisionID: dec.DecisionID, Action: "x"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}
