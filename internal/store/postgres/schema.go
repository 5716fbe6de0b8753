package postgres

const schemaDDL = `
CREATE TABLE IF NOT EXISTS experiments (
    id              TEXT PRIMARY KEY,
    page_url        TEXT NOT NULL,
    page_slug       TEXT NOT NULL DEFAULT '',
    post_id         INTEGER NOT NULL DEFAULT 0,
    pre             JSONB,
    changes_summary TEXT NOT NULL DEFAULT '',
    hypothesis      TEXT NOT NULL DEFAULT '',
    post            JSONB,
    outcome         TEXT NOT NULL DEFAULT '',
    outcome_notes   TEXT NOT NULL DEFAULT '',
    status          TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL,
    evaluated_at    TIMESTAMPTZ,
    archived_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_experiments_page_url ON experiments (page_url);
CREATE INDEX IF NOT EXISTS idx_experiments_status ON experiments (status);
CREATE INDEX IF NOT EXISTS idx_experiments_outcome ON experiments (outcome);
CREATE INDEX IF NOT EXISTS idx_experiments_created_at ON experiments (created_at);

CREATE TABLE IF NOT EXISTS changes (
    id              TEXT PRIMARY KEY,
    experiment_id   TEXT NOT NULL,
    change_type     TEXT NOT NULL DEFAULT '',
    element_kind    TEXT NOT NULL DEFAULT '',
    element_content TEXT NOT NULL DEFAULT '',
    insertion_point TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL,
    archived_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_changes_experiment_id ON changes (experiment_id);
CREATE INDEX IF NOT EXISTS idx_changes_element_kind ON changes (element_kind);

CREATE TABLE IF NOT EXISTS score_snapshots (
    page_url    TEXT NOT NULL,
    page_slug   TEXT NOT NULL DEFAULT '',
    date        TEXT NOT NULL,
    total_score INTEGER NOT NULL DEFAULT 0,
    elements    JSONB,
    created_at  TIMESTAMPTZ NOT NULL,
    archived_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (page_url, created_at)
);

CREATE INDEX IF NOT EXISTS idx_score_snapshots_date ON score_snapshots (date);
`
