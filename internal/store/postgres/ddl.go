package postgres

// Bootstrap statements. Idempotent; safe to run on every start.
var ddlStatements = []string{
	`CREATE TABLE IF NOT EXISTS checkin_entries (
		entry_id               TEXT PRIMARY KEY,
		user_id                TEXT NOT NULL,
		mood_score             INT NOT NULL,
		energy_level           TEXT NOT NULL,
		stress_level           TEXT NOT NULL,
		emotional_tier         TEXT NOT NULL,
		phq2_q1                INT NOT NULL DEFAULT 0,
		phq2_q2                INT NOT NULL DEFAULT 0,
		phq2_total             INT NOT NULL DEFAULT 0,
		gad2_q1                INT NOT NULL DEFAULT 0,
		gad2_q2                INT NOT NULL DEFAULT 0,
		gad2_total             INT NOT NULL DEFAULT 0,
		who5_q1                INT NOT NULL DEFAULT 0,
		who5_q2                INT NOT NULL DEFAULT 0,
		who5_q3                INT NOT NULL DEFAULT 0,
		who5_normalized        INT NOT NULL DEFAULT 0,
		depression_risk        BOOLEAN NOT NULL DEFAULT FALSE,
		anxiety_risk           BOOLEAN NOT NULL DEFAULT FALSE,
		risk_probability       DOUBLE PRECISION NOT NULL DEFAULT 0,
		sentiment_score        DOUBLE PRECISION,
		simplified_explanation TEXT NOT NULL DEFAULT '',
		journal_ciphertext     BYTEA,
		journal_nonce          BYTEA,
		interests              JSONB NOT NULL DEFAULT '[]',
		creation_time          TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_user_time ON checkin_entries(user_id, creation_time)`,

	`CREATE TABLE IF NOT EXISTS agent_decisions (
		decision_id   TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL,
		agent_name    TEXT NOT NULL,
		input_summary JSONB NOT NULL DEFAULT '{}',
		output        JSONB NOT NULL DEFAULT '{}',
		confidence    DOUBLE PRECISION NOT NULL DEFAULT 0,
		reasoning     TEXT NOT NULL DEFAULT '',
		creation_time TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_decisions_user_time ON agent_decisions(user_id, creation_time)`,

	`CREATE TABLE IF NOT EXISTS intervention_outcomes (
		outcome_id        TEXT PRIMARY KEY,
		user_id           TEXT NOT NULL,
		decision_id       TEXT NOT NULL,
		action            TEXT NOT NULL,
		completed         BOOLEAN NOT NULL DEFAULT FALSE,
		rating            INT,
		time_to_complete  INT,
		improvement_delta DOUBLE PRECISION NOT NULL DEFAULT 0,
		completion_time   TIMESTAMPTZ,
		creation_time     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outcomes_user ON intervention_outcomes(user_id)`,

	`CREATE TABLE IF NOT EXISTS confidence_adjustments (
		agent_name          TEXT NOT NULL,
		original_confidence DOUBLE PRECISION NOT NULL,
		adjusted_confidence DOUBLE PRECISION NOT NULL,
		reason              TEXT NOT NULL DEFAULT '',
		creation_time       TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS user_memory (
		user_id           TEXT PRIMARY KEY,
		long_term_summary JSONB NOT NULL DEFAULT '{}',
		trend_direction   TEXT NOT NULL DEFAULT 'insufficient_data',
		engagement_score  INT NOT NULL DEFAULT 0,
		last_updated      TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS crisis_helplines (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		phone_number TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		region       TEXT NOT NULL DEFAULT '',
		is_active    BOOLEAN NOT NULL DEFAULT TRUE
	)`,

	`CREATE TABLE IF NOT EXISTS skill_modules (
		id               TEXT PRIMARY KEY,
		title            TEXT NOT NULL,
		category         TEXT NOT NULL,
		difficulty       TEXT NOT NULL,
		duration_minutes INT NOT NULL,
		points_reward    INT NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS user_skill_progress (
		user_id      TEXT NOT NULL,
		skill_id     TEXT NOT NULL,
		completed    BOOLEAN NOT NULL DEFAULT FALSE,
		started_at   TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ,
		PRIMARY KEY (user_id, skill_id)
	)`,

	`CREATE TABLE IF NOT EXISTS courses (
		id                TEXT PRIMARY KEY,
		title             TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		category          TEXT NOT NULL DEFAULT '',
		difficulty        INT NOT NULL DEFAULT 1,
		duration_estimate TEXT NOT NULL DEFAULT '',
		source_url        TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS user_courses (
		user_id           TEXT NOT NULL,
		course_id         TEXT NOT NULL,
		completion_status TEXT NOT NULL DEFAULT 'started',
		PRIMARY KEY (user_id, course_id)
	)`,

	`CREATE TABLE IF NOT EXISTS user_profiles (
		user_id            TEXT PRIMARY KEY,
		preferred_language TEXT NOT NULL DEFAULT 'en',
		education_level    TEXT NOT NULL DEFAULT '',
		location_type      TEXT NOT NULL DEFAULT '',
		internet_stability TEXT NOT NULL DEFAULT ''
	)`,
}
