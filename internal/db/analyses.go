package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yuyongju/music-emotion-classification/internal/video"
)

// AnalysisRepository handles video analysis database operations.
type AnalysisRepository struct {
	pool *pgxpool.Pool
}

// Create inserts an analysis with all of its annotations.
func (r *AnalysisRepository) Create(ctx context.Context, an *Analysis, annotations video.Analysis) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if an.ID == uuid.Nil {
		an.ID = uuid.New()
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO analyses (id, bucket, created_at)
		VALUES ($1, $2, NOW())
		RETURNING created_at
	`, an.ID, an.Bucket).Scan(&an.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting analysis: %w", err)
	}

	all := annotations.All()
	if len(all) > 0 {
		columns := []string{"analysis_id", "seq", "kind", "video_id", "label", "category", "start_sec", "end_sec", "confidence"}
		_, err = tx.CopyFrom(ctx, pgx.Identifier{"video_annotations"}, columns,
			pgx.CopyFromSlice(len(all), func(i int) ([]any, error) {
				return annotationRow(an.ID, i, all[i]), nil
			}),
		)
		if err != nil {
			return fmt.Errorf("inserting annotations: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Get retrieves an analysis by ID.
func (r *AnalysisRepository) Get(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	query := `SELECT id, bucket, created_at FROM analyses WHERE id = $1`
	var an Analysis
	err := r.pool.QueryRow(ctx, query, id).Scan(&an.ID, &an.Bucket, &an.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying analysis: %w", err)
	}
	return &an, nil
}

// Latest retrieves the most recent analysis of a bucket.
func (r *AnalysisRepository) Latest(ctx context.Context, bucket string) (*Analysis, error) {
	query := `
		SELECT id, bucket, created_at
		FROM analyses
		WHERE bucket = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var an Analysis
	err := r.pool.QueryRow(ctx, query, bucket).Scan(&an.ID, &an.Bucket, &an.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest analysis: %w", err)
	}
	return &an, nil
}

// GetAnnotations retrieves the annotations of an analysis in insertion order.
func (r *AnalysisRepository) GetAnnotations(ctx context.Context, analysisID uuid.UUID) (video.Analysis, error) {
	query := `
		SELECT kind, video_id, label, category, start_sec, end_sec, confidence
		FROM video_annotations
		WHERE analysis_id = $1
		ORDER BY seq
	`
	rows, err := r.pool.Query(ctx, query, analysisID)
	if err != nil {
		return video.Analysis{}, fmt.Errorf("querying annotations: %w", err)
	}
	defer rows.Close()

	var out video.Analysis
	for rows.Next() {
		var a video.Annotation
		var kind string
		if err := rows.Scan(&kind, &a.VideoID, &a.Label, &a.Category, &a.Start, &a.End, &a.Confidence); err != nil {
			return video.Analysis{}, fmt.Errorf("scanning annotation: %w", err)
		}
		a.Kind = video.Kind(kind)
		addAnnotation(&out, a)
	}
	return out, rows.Err()
}

// Delete removes an analysis and its annotations.
func (r *AnalysisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting analysis: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
