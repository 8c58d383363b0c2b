// Package store exposes the persistence operations the pipeline needs.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
package store

import (
	"context"
	"time"

	"github.com/empowher/empowher-server/internal/model"
)

// Store is the storage port handed to the memory manager, the agents'
// supporting services and the reflection loop. Agents never reach a
// process-wide handle; everything is injected at construction.
type Store interface {
	Entries() Entries
	Decisions() Decisions
	Outcomes() Outcomes
	Memories() Memories
	Helplines() Helplines
	Skills() Skills
	Courses() Courses
	Profiles() Profiles
}

// Entries persists check-in rows. Rows are immutable once written.
type Entries interface {
	Create(ctx context.Context, e *model.CheckinEntry) (*model.CheckinEntry, error)
	// ListSince returns entries created at or after since, newest first.
	ListSince(ctx context.Context, userID string, since time.Time) ([]*model.CheckinEntry, error)
}

// Decisions is the append-only agent decision log.
type Decisions interface {
	Create(ctx context.Context, d *model.AgentDecision) (*model.AgentDecision, error)
	Get(ctx context.Context, decisionID string) (*model.AgentDecision, error)
	// List returns decisions newest first.
	List(ctx context.Context, userID string, limit, offset int) ([]*model.AgentDecision, error)
}

// Outcomes records intervention feedback and its aggregates.
type Outcomes interface {
	Create(ctx context.Context, o *model.InterventionOutcome) (*model.InterventionOutcome, error)
	// ListCompleted returns completed outcomes newest first, capped at limit.
	ListCompleted(ctx context.Context, userID string, limit int) ([]*model.InterventionOutcome, error)
	Analytics(ctx context.Context, userID string) ([]*model.OutcomeAnalytics, error)
	RecordAdjustment(ctx context.Context, a *model.ConfidenceAdjustment) error
}

// Memories holds the per-user long-term memory row.
type Memories interface {
	// Get returns model.ErrNotFound when no row exists yet.
	Get(ctx context.Context, userID string) (*model.UserMemory, error)
	Create(ctx context.Context, userID string) (*model.UserMemory, error)
	Update(ctx context.Context, m *model.UserMemory) error
}

// Helplines lists crisis support contacts.
type Helplines interface {
	ListActive(ctx context.Context) ([]*model.Helpline, error)
}

// Skills exposes the skill catalog and per-user progress.
type Skills interface {
	ListModules(ctx context.Context) ([]*model.SkillModule, error)
	ListProgress(ctx context.Context, userID string) ([]*model.SkillProgress, error)
	CountCompletedSince(ctx context.Context, userID string, since time.Time) (int, error)
}

// Courses lists learning resources a user has not completed, bounded by a
// difficulty ceiling, ordered difficulty descending then id ascending.
type Courses interface {
	ListIncomplete(ctx context.Context, userID string, maxDifficulty int) ([]*model.Course, error)
}

// Profiles returns accessibility attributes for a user; ErrNotFound means
// the caller should use a zero profile.
type Profiles interface {
	Get(ctx context.Context, userID string) (*model.UserProfile, error)
}
