package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"designgen-backend/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Get(ctx context.Context, subjectID string) (*models.GenerationRecord, error) {
	var (
		rec        models.GenerationRecord
		projectID  sql.NullString
		lastChatID sql.NullString
		resultURL  sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT subject_id, project_id, last_chat_id, last_prompt, status, result_url, version, updated_at
		FROM generation_records
		WHERE subject_id = $1
	`, subjectID).Scan(
		&rec.SubjectID, &projectID, &lastChatID, &rec.LastPrompt,
		&rec.Status, &resultURL, &rec.Version, &rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	rec.ProjectID = projectID.String
	rec.LastChatID = lastChatID.String
	rec.ResultURL = resultURL.String
	return &rec, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, rec models.GenerationRecord) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_records (subject_id, project_id, last_chat_id, last_prompt, status, result_url, version, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, $7)
		ON CONFLICT (subject_id) DO UPDATE
		SET project_id = EXCLUDED.project_id,
		    last_chat_id = EXCLUDED.last_chat_id,
		    last_prompt = EXCLUDED.last_prompt,
		    status = EXCLUDED.status,
		    result_url = EXCLUDED.result_url,
		    version = generation_records.version + 1,
		    updated_at = EXCLUDED.updated_at
		WHERE generation_records.version = $8
	`, rec.SubjectID, nullable(rec.ProjectID), nullable(rec.LastChatID),
		rec.LastPrompt, rec.Status, nullable(rec.ResultURL), rec.UpdatedAt, rec.Version)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check upsert result: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}

	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func nullable(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
