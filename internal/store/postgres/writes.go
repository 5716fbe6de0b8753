package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/danhoward/aio-engine/pkg/types"
)

// UpsertExperiment writes an experiment record, updating on re-archive.
func (s *Store) UpsertExperiment(ctx context.Context, exp types.Experiment) error {
	pre, err := json.Marshal(exp.Pre)
	if err != nil {
		return fmt.Errorf("marshal pre snapshot: %w", err)
	}
	var post []byte
	if exp.Post != nil {
		post, err = json.Marshal(exp.Post)
		if err != nil {
			return fmt.Errorf("marshal post snapshot: %w", err)
		}
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO experiments (id, page_url, page_slug, post_id, pre, changes_summary,
			hypothesis, post, outcome, outcome_notes, status, created_at, evaluated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			post = EXCLUDED.post,
			outcome = EXCLUDED.outcome,
			outcome_notes = EXCLUDED.outcome_notes,
			status = EXCLUDED.status,
			evaluated_at = EXCLUDED.evaluated_at,
			archived_at = NOW()
	`, exp.ID, exp.PageURL, exp.PageSlug, exp.PostID, pre, exp.ChangesSummary,
		exp.Hypothesis, post, string(exp.Outcome), exp.OutcomeNotes, string(exp.Status),
		exp.CreatedAt, exp.EvaluatedAt)
	if err != nil {
		return fmt.Errorf("upsert experiment %s: %w", exp.ID, err)
	}
	return nil
}

// UpsertChange writes a change record. Changes are immutable, so a re-archive
// only refreshes archived_at.
func (s *Store) UpsertChange(ctx context.Context, ch types.Change) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO changes (id, experiment_id, change_type, element_kind,
			element_content, insertion_point, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			archived_at = NOW()
	`, ch.ID, ch.ExperimentID, string(ch.Type), ch.ElementKind,
		ch.ElementContent, ch.InsertionPoint, ch.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert change %s: %w", ch.ID, err)
	}
	return nil
}

// UpsertScoreSnapshot writes a score history record.
func (s *Store) UpsertScoreSnapshot(ctx context.Context, snap types.ScoreSnapshot) error {
	elements, err := json.Marshal(snap.Elements)
	if err != nil {
		return fmt.Errorf("marshal elements: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO score_snapshots (page_url, page_slug, date, total_score, elements, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (page_url, created_at) DO UPDATE SET
			total_score = EXCLUDED.total_score,
			elements = EXCLUDED.elements,
			archived_at = NOW()
	`, snap.PageURL, snap.PageSlug, snap.Date, snap.TotalScore, elements, snap.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert score snapshot %s: %w", snap.PageURL, err)
	}
	return nil
}
