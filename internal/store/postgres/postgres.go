// Package postgres implements store.Store on PostgreSQL via pgx's
// database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/empowher/empowher-server/internal/model"
	"github.com/empowher/empowher-server/internal/store"
)

// Open connects with the given DSN and applies the schema.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := Bootstrap(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Bootstrap applies the schema statements.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	for _, stmt := range ddlStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// NewWithDB wraps an open connection as a store.Store.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Entries() store.Entries     { return &entries{db: s.db} }
func (s *pgStore) Decisions() store.Decisions { return &decisions{db: s.db} }
func (s *pgStore) Outcomes() store.Outcomes   { return &outcomes{db: s.db} }
func (s *pgStore) Memories() store.Memories   { return &memories{db: s.db} }
func (s *pgStore) Helplines() store.Helplines { return &helplines{db: s.db} }
func (s *pgStore) Skills() store.Skills       { return &skills{db: s.db} }
func (s *pgStore) Courses() store.Courses     { return &courses{db: s.db} }
func (s *pgStore) Profiles() store.Profiles   { return &profiles{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *pgStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

// --- Entries ---

type entries struct{ db *sql.DB }

func (e *entries) Create(ctx context.Context, m *model.CheckinEntry) (*model.CheckinEntry, error) {
	out := *m
	if out.EntryID == "" {
		out.EntryID = uuid.New().String()
	}
	if out.CreationTime.IsZero() {
		out.CreationTime = time.Now().UTC()
	}
	interests, err := json.Marshal(out.Interests)
	if err != nil {
		return nil, err
	}

	_, err = e.db.ExecContext(ctx, `INSERT INTO checkin_entries (
		entry_id, user_id, mood_score, energy_level, stress_level, emotional_tier,
		phq2_q1, phq2_q2, phq2_total, gad2_q1, gad2_q2, gad2_total,
		who5_q1, who5_q2, who5_q3, who5_normalized,
		depression_risk, anxiety_risk, risk_probability,
		sentiment_score, simplified_explanation,
		journal_ciphertext, journal_nonce, interests, creation_time
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)`,
		out.EntryID, out.UserID, out.MoodScore, out.EnergyLevel, out.StressLevel, string(out.Tier),
		out.PHQ2Q1, out.PHQ2Q2, out.PHQ2Total, out.GAD2Q1, out.GAD2Q2, out.GAD2Total,
		out.WHO5Q1, out.WHO5Q2, out.WHO5Q3, out.WHO5Normalized,
		out.DepressionRisk, out.AnxietyRisk, out.RiskProbability,
		out.SentimentScore, out.SimplifiedExplanation,
		out.JournalCiphertext, out.JournalNonce, string(interests), out.CreationTime,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *entries) ListSince(ctx context.Context, userID string, since time.Time) ([]*model.CheckinEntry, error) {
	rows, err := e.db.QueryContext(ctx, `SELECT
		entry_id, user_id, mood_score, energy_level, stress_level, emotional_tier,
		phq2_q1, phq2_q2, phq2_total, gad2_q1, gad2_q2, gad2_total,
		who5_q1, who5_q2, who5_q3, who5_normalized,
		depression_risk, anxiety_risk, risk_probability,
		sentiment_score, simplified_explanation,
		journal_ciphertext, journal_nonce, interests, creation_time
	FROM checkin_entries
	WHERE user_id = $1 AND creation_time >= $2
	ORDER BY creation_time DESC`, userID, since)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.CheckinEntry
	for rows.Next() {
		var m model.CheckinEntry
		var tier, interests string
		if err := rows.Scan(
			&m.EntryID, &m.UserID, &m.MoodScore, &m.EnergyLevel, &m.StressLevel, &tier,
			&m.PHQ2Q1, &m.PHQ2Q2, &m.PHQ2Total, &m.GAD2Q1, &m.GAD2Q2, &m.GAD2Total,
			&m.WHO5Q1, &m.WHO5Q2, &m.WHO5Q3, &m.WHO5Normalized,
			&m.DepressionRisk, &m.AnxietyRisk, &m.RiskProbability,
			&m.SentimentScore, &m.SimplifiedExplanation,
			&m.JournalCiphertext, &m.JournalNonce, &interests, &m.CreationTime,
		); err != nil {
			return nil, err
		}
		m.Tier = model.Tier(tier)
		if err := json.Unmarshal([]byte(interests), &m.Interests); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// --- Decisions ---

type decisions struct{ db *sql.DB }

func (d *decisions) Create(ctx context.Context, dec *model.AgentDecision) (*model.AgentDecision, error) {
	out := *dec
	if out.DecisionID == "" {
		out.DecisionID = uuid.New().String()
	}
	if out.CreationTime.IsZero() {
		out.CreationTime = time.Now().UTC()
	}
	input := string(out.InputSummary)
	if input == "" {
		input = "{}"
	}
	output := string(out.Output)
	if output == "" {
		output = "{}"
	}
	_, err := d.db.ExecContext(ctx, `INSERT INTO agent_decisions
		(decision_id, user_id, agent_name, input_summary, output, confidence, reasoning, creation_time)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		out.DecisionID, out.UserID, out.AgentName, input, output, out.Confidence, out.Reasoning, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *decisions) Get(ctx context.Context, decisionID string) (*model.AgentDecision, error) {
	row := d.db.QueryRowContext(ctx, `SELECT decision_id, user_id, agent_name, input_summary, output, confidence, reasoning, creation_time
		FROM agent_decisions WHERE decision_id = $1`, decisionID)
	return scanDecision(row)
}

func (d *decisions) List(ctx context.Context, userID string, limit, offset int) ([]*model.AgentDecision, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT decision_id, user_id, agent_name, input_summary, output, confidence, reasoning, creation_time
		FROM agent_decisions WHERE user_id = $1
		ORDER BY creation_time DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.AgentDecision
	for rows.Next() {
		dec, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, dec)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanDecision(r rowScanner) (*model.AgentDecision, error) {
	var m model.AgentDecision
	var input, output string
	if err := r.Scan(&m.DecisionID, &m.UserID, &m.AgentName, &input, &output, &m.Confidence, &m.Reasoning, &m.CreationTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	m.InputSummary = json.RawMessage(input)
	m.Output = json.RawMessage(output)
	return &m, nil
}

// --- Outcomes ---

type outcomes struct{ db *sql.DB }

func (o *outcomes) Create(ctx context.Context, m *model.InterventionOutcome) (*model.InterventionOutcome, error) {
	out := *m
	if out.OutcomeID == "" {
		out.OutcomeID = uuid.New().String()
	}
	if out.CreationTime.IsZero() {
		out.CreationTime = time.Now().UTC()
	}
	_, err := o.db.ExecContext(ctx, `INSERT INTO intervention_outcomes
		(outcome_id, user_id, decision_id, action, completed, rating, time_to_complete, improvement_delta, completion_time, creation_time)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		out.OutcomeID, out.UserID, out.DecisionID, out.Action, out.Completed,
		out.Rating, out.TimeToCompleteMinutes, out.ImprovementDelta, out.CompletionTime, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (o *outcomes) ListCompleted(ctx context.Context, userID string, limit int) ([]*model.InterventionOutcome, error) {
	rows, err := o.db.QueryContext(ctx, `SELECT outcome_id, user_id, decision_id, action, completed, rating, time_to_complete, improvement_delta, completion_time, creation_time
		FROM intervention_outcomes
		WHERE user_id = $1 AND completed
		ORDER BY completion_time DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.InterventionOutcome
	for rows.Next() {
		var m model.InterventionOutcome
		if err := rows.Scan(&m.OutcomeID, &m.UserID, &m.DecisionID, &m.Action, &m.Completed,
			&m.Rating, &m.TimeToCompleteMinutes, &m.ImprovementDelta, &m.CompletionTime, &m.CreationTime); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (o *outcomes) Analytics(ctx context.Context, userID string) ([]*model.OutcomeAnalytics, error) {
	rows, err := o.db.QueryContext(ctx, `SELECT
		action,
		COUNT(*) AS total_attempts,
		COUNT(*) FILTER (WHERE completed) AS completed,
		AVG(rating) AS avg_rating,
		AVG(time_to_complete) AS avg_time
	FROM intervention_outcomes
	WHERE user_id = $1
	GROUP BY action
	ORDER BY completed DESC, action ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.OutcomeAnalytics
	for rows.Next() {
		var a model.OutcomeAnalytics
		if err := rows.Scan(&a.Action, &a.TotalAttempts, &a.Completed, &a.AvgRating, &a.AvgTimeMinutes); err != nil {
			return nil, err
		}
		if a.TotalAttempts > 0 {
			a.CompletionRate = float64(a.Completed) / float64(a.TotalAttempts) * 100
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (o *outcomes) RecordAdjustment(ctx context.Context, a *model.ConfidenceAdjustment) error {
	when := a.CreationTime
	if when.IsZero() {
		when = time.Now().UTC()
	}
	_, err := o.db.ExecContext(ctx, `INSERT INTO confidence_adjustments
		(agent_name, original_confidence, adjusted_confidence, reason, creation_time)
		VALUES ($1,$2,$3,$4,$5)`,
		a.AgentName, a.OriginalConfidence, a.AdjustedConfidence, a.Reason, when)
	return err
}

// --- Memories ---

type memories struct{ db *sql.DB }

func (m *memories) Get(ctx context.Context, userID string) (*model.UserMemory, error) {
	row := m.db.QueryRowContext(ctx, `SELECT user_id, long_term_summary, trend_direction, engagement_score, last_updated
		FROM user_memory WHERE user_id = $1`, userID)

	var out model.UserMemory
	var summary, trend string
	if err := row.Scan(&out.UserID, &summary, &trend, &out.EngagementScore, &out.LastUpdated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(summary), &out.LongTerm); err != nil {
		return nil, err
	}
	out.TrendDirection = model.TrendDirection(trend)
	return &out, nil
}

func (m *memories) Create(ctx context.Context, userID string) (*model.UserMemory, error) {
	now := time.Now().UTC()
	_, err := m.db.ExecContext(ctx, `INSERT INTO user_memory (user_id, long_term_summary, trend_direction, engagement_score, last_updated)
		VALUES ($1,$2,$3,$4,$5)`,
		userID, "{}", string(model.TrendInsufficient), 0, now)
	if err != nil {
		return nil, err
	}
	return &model.UserMemory{
		UserID:         userID,
		TrendDirection: model.TrendInsufficient,
		LastUpdated:    now,
	}, nil
}

func (m *memories) Update(ctx context.Context, um *model.UserMemory) error {
	summary, err := json.Marshal(um.LongTerm)
	if err != nil {
		return err
	}
	res, err := m.db.ExecContext(ctx, `UPDATE user_memory
		SET long_term_summary = $1, trend_direction = $2, engagement_score = $3, last_updated = $4
		WHERE user_id = $5`,
		string(summary), string(um.TrendDirection), um.EngagementScore, time.Now().UTC(), um.UserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Helplines ---

type helplines struct{ db *sql.DB }

func (h *helplines) ListActive(ctx context.Context) ([]*model.Helpline, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT id, name, phone_number, description, region
		FROM crisis_helplines WHERE is_active ORDER BY region, name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Helpline
	for rows.Next() {
		var m model.Helpline
		if err := rows.Scan(&m.ID, &m.Name, &m.PhoneNumber, &m.Description, &m.Region); err != nil {
			return nil, err
		}
		m.Active = true
		out = append(out, &m)
	}
	return out, rows.Err()
}

// --- Skills ---

type skills struct{ db *sql.DB }

func (s *skills) ListModules(ctx context.Context) ([]*model.SkillModule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, category, difficulty, duration_minutes, points_reward
		FROM skill_modules ORDER BY points_reward DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.SkillModule
	for rows.Next() {
		var m model.SkillModule
		if err := rows.Scan(&m.ID, &m.Title, &m.Category, &m.Difficulty, &m.DurationMinutes, &m.PointsReward); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (s *skills) ListProgress(ctx context.Context, userID string) ([]*model.SkillProgress, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT p.user_id, p.skill_id, m.category, p.completed, p.started_at, p.completed_at
		FROM user_skill_progress p
		JOIN skill_modules m ON m.id = p.skill_id
		WHERE p.user_id = $1
		ORDER BY p.started_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.SkillProgress
	for rows.Next() {
		var m model.SkillProgress
		if err := rows.Scan(&m.UserID, &m.SkillID, &m.Category, &m.Completed, &m.StartedAt, &m.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (s *skills) CountCompletedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_skill_progress
		WHERE user_id = $1 AND completed AND completed_at >= $2`, userID, since).Scan(&n)
	return n, err
}

// --- Courses ---

type courses struct{ db *sql.DB }

func (c *courses) ListIncomplete(ctx context.Context, userID string, maxDifficulty int) ([]*model.Course, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT c.id, c.title, c.description, c.category, c.difficulty, c.duration_estimate, c.source_url
		FROM courses c
		LEFT JOIN user_courses uc ON uc.course_id = c.id AND uc.user_id = $1
		WHERE (uc.course_id IS NULL OR uc.completion_status != 'completed')
		AND c.difficulty <= $2
		ORDER BY c.difficulty DESC, c.id ASC`, userID, maxDifficulty)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Course
	for rows.Next() {
		var m model.Course
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Category, &m.Difficulty, &m.DurationEstimate, &m.SourceURL); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// --- Profiles ---

type profiles struct{ db *sql.DB }

func (p *profiles) Get(ctx context.Context, userID string) (*model.UserProfile, error) {
	row := p.db.QueryRowContext(ctx, `SELECT user_id, preferred_language, education_level, location_type, internet_stability
		FROM user_profiles WHERE user_id = $1`, userID)

	var out model.UserProfile
	if err := row.Scan(&out.UserID, &out.PreferredLanguage, &out.EducationLevel, &out.LocationType, &out.InternetStability); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}
