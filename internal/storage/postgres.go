/**
 * PostgreSQL Client for the OCR Worker
 *
 * Handles job status persistence and recognition result storage.
 */

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/lib/pq"
)

// PostgresClient handles database operations
type PostgresClient struct {
	db *sql.DB
}

// JobUpdate represents a job status update
type JobUpdate struct {
	JobID            string
	Status           string
	Progress         int
	Confidence       float64
	ProcessingTimeMs int64
	ResultID         string
	ErrorCode        string
	ErrorMessage     string
	Preset           string
	Metadata         map[string]interface{}
}

// RecognitionRecord is one stored recognition result
type RecognitionRecord struct {
	ID            string
	JobID         string
	Text          string
	Confidence    float64
	WordCount     int
	Tree          json.RawMessage
	Parameters    map[string]string
	Fingerprint   []float32
	QdrantPointID string
	CreatedAt     time.Time
}

const schemaSQL = `
	CREATE SCHEMA IF NOT EXISTS ocr;

	CREATE TABLE IF NOT EXISTS ocr.recognition_jobs (
		id                 UUID PRIMARY KEY,
		user_id            TEXT NOT NULL DEFAULT 'anonymous',
		filename           TEXT NOT NULL DEFAULT 'unknown',
		status             TEXT NOT NULL,
		progress           INTEGER NOT NULL DEFAULT 0,
		confidence         NUMERIC(5,2),
		processing_time_ms BIGINT,
		result_id          UUID,
		error_code         TEXT,
		error_message      TEXT,
		preset             TEXT,
		metadata           JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS ocr.recognition_results (
		id              UUID PRIMARY KEY,
		job_id          UUID NOT NULL,
		qdrant_point_id UUID,
		text            TEXT NOT NULL,
		confidence      NUMERIC(5,2) NOT NULL,
		word_count      INTEGER NOT NULL,
		tree            JSONB NOT NULL,
		parameters      JSONB NOT NULL DEFAULT '{}'::jsonb,
		changed_names   TEXT[] NOT NULL DEFAULT '{}',
		fingerprint     REAL[] NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS recognition_results_job_id_idx
		ON ocr.recognition_results (job_id);
`

// sanitizeConfidence clamps confidence to [0, 100] and rounds it to two
// decimals so it fits NUMERIC(5,2).
func sanitizeConfidence(confidence float64) float64 {
	if math.IsNaN(confidence) || confidence < 0 {
		return 0
	}
	if confidence > 100 {
		return 100
	}
	return math.Round(confidence*100) / 100
}

// NewPostgresClient creates a new PostgreSQL client
func NewPostgresClient(databaseURL string) (*PostgresClient, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{db: db}, nil
}

// EnsureSchema creates the ocr schema and tables when missing
func (p *PostgresClient) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// jobColumns pulls the optional columns that travel in metadata
func jobColumns(metadata map[string]interface{}) (filename, userID string) {
	if metadata == nil {
		return "", ""
	}
	if fn, ok := metadata["filename"].(string); ok {
		filename = fn
	}
	if uid, ok := metadata["userId"].(string); ok {
		userID = uid
	}
	return filename, userID
}

// UpdateJobStatus upserts the job row. The first update creates it.
func (p *PostgresClient) UpdateJobStatus(ctx context.Context, update *JobUpdate) error {
	if update == nil || update.JobID == "" {
		return fmt.Errorf("job ID is required")
	}

	if update.Status == "" {
		return fmt.Errorf("status is required")
	}

	confidence := sanitizeConfidence(update.Confidence)

	metadata := update.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	metadataJSON = sanitizeJSONForPostgres(metadataJSON)

	filename, userID := jobColumns(update.Metadata)

	query := `
		INSERT INTO ocr.recognition_jobs (
			id, status, progress, confidence, processing_time_ms, result_id,
			error_code, error_message, preset, metadata, filename, user_id,
			created_at, updated_at
		) VALUES (
			$1::uuid, $2, $3, NULLIF($4::NUMERIC(5,2), 0), NULLIF($5, 0),
			CASE WHEN $6 = '' THEN NULL ELSE $6::uuid END,
			NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''),
			COALESCE($10::jsonb, '{}'::jsonb),
			COALESCE(NULLIF($11, ''), 'unknown'), COALESCE(NULLIF($12, ''), 'anonymous'),
			NOW(), NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			progress = GREATEST(EXCLUDED.progress, ocr.recognition_jobs.progress),
			confidence = COALESCE(EXCLUDED.confidence, ocr.recognition_jobs.confidence),
			processing_time_ms = COALESCE(EXCLUDED.processing_time_ms, ocr.recognition_jobs.processing_time_ms),
			result_id = COALESCE(EXCLUDED.result_id, ocr.recognition_jobs.result_id),
			error_code = EXCLUDED.error_code,
			error_message = EXCLUDED.error_message,
			preset = COALESCE(EXCLUDED.preset, ocr.recognition_jobs.preset),
			metadata = ocr.recognition_jobs.metadata || EXCLUDED.metadata,
			updated_at = NOW()
		RETURNING id
	`

	var returnedID string
	err = p.db.QueryRowContext(
		ctx,
		query,
		update.JobID,            // $1
		update.Status,           // $2
		update.Progress,         // $3
		confidence,              // $4
		update.ProcessingTimeMs, // $5
		update.ResultID,         // $6
		update.ErrorCode,        // $7
		update.ErrorMessage,     // $8
		update.Preset,           // $9
		metadataJSON,            // $10
		filename,                // $11
		userID,                  // $12
	).Scan(&returnedID)

	if err == sql.ErrNoRows {
		return fmt.Errorf("job not found: %s", update.JobID)
	}

	if err != nil {
		return fmt.Errorf("failed to update job status (job=%s, status=%s, confidence=%.2f): %w",
			update.JobID, update.Status, confidence, err)
	}

	return nil
}

// insertRecognition writes one result row
func (p *PostgresClient) insertRecognition(ctx context.Context, rec *RecognitionRecord, changed []string) (time.Time, error) {
	params, err := json.Marshal(rec.Parameters)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to marshal parameters: %w", err)
	}

	query := `
		INSERT INTO ocr.recognition_results (
			id, job_id, qdrant_point_id, text, confidence, word_count,
			tree, parameters, changed_names, fingerprint, created_at
		) VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING created_at
	`

	var createdAt time.Time
	err = p.db.QueryRowContext(
		ctx,
		query,
		rec.ID,
		rec.JobID,
		rec.QdrantPointID,
		stripNullRunes(rec.Text),
		sanitizeConfidence(rec.Confidence),
		rec.WordCount,
		sanitizeJSONForPostgres(rec.Tree),
		sanitizeJSONForPostgres(params),
		pq.Array(changed),
		pq.Array(rec.Fingerprint),
	).Scan(&createdAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to store recognition result: %w", err)
	}
	return createdAt, nil
}

// GetRecognition retrieves a stored result by ID
func (p *PostgresClient) GetRecognition(ctx context.Context, resultID string) (*RecognitionRecord, error) {
	if resultID == "" {
		return nil, fmt.Errorf("result ID is required")
	}

	query := `
		SELECT
			id,
			job_id,
			COALESCE(qdrant_point_id::text, ''),
			text,
			confidence,
			word_count,
			tree,
			parameters,
			fingerprint,
			created_at
		FROM ocr.recognition_results
		WHERE id = $1
	`

	var (
		rec         RecognitionRecord
		tree        []byte
		params      []byte
		fingerprint pq.Float32Array
	)

	err := p.db.QueryRowContext(ctx, query, resultID).Scan(
		&rec.ID,
		&rec.JobID,
		&rec.QdrantPointID,
		&rec.Text,
		&rec.Confidence,
		&rec.WordCount,
		&tree,
		&params,
		&fingerprint,
		&rec.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("recognition result not found: %s", resultID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get recognition result: %w", err)
	}

	rec.Tree = json.RawMessage(tree)
	rec.Fingerprint = []float32(fingerprint)
	if err := json.Unmarshal(params, &rec.Parameters); err != nil {
		return nil, fmt.Errorf("failed to unmarshal parameters: %w", err)
	}

	return &rec, nil
}

// GetJobByID retrieves a job by ID
func (p *PostgresClient) GetJobByID(ctx context.Context, jobID string) (map[string]interface{}, error) {
	if jobID == "" {
		return nil, fmt.Errorf("job ID is required")
	}

	query := `
		SELECT
			id,
			user_id,
			filename,
			status,
			progress,
			confidence,
			processing_time_ms,
			result_id,
			error_code,
			error_message,
			preset,
			metadata,
			created_at,
			updated_at
		FROM ocr.recognition_jobs
		WHERE id = $1::uuid
	`

	var (
		id, userID, filename, status      string
		progress                          int
		confidence                        sql.NullFloat64
		processingTimeMs                  sql.NullInt64
		resultID, errorCode, errorMessage sql.NullString
		preset                            sql.NullString
		metadataJSON                      []byte
		createdAt, updatedAt              time.Time
	)

	err := p.db.QueryRowContext(ctx, query, jobID).Scan(
		&id, &userID, &filename, &status, &progress,
		&confidence, &processingTimeMs, &resultID,
		&errorCode, &errorMessage, &preset,
		&metadataJSON, &createdAt, &updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	var metadata map[string]interface{}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	result := map[string]interface{}{
		"id":        id,
		"userId":    userID,
		"filename":  filename,
		"status":    status,
		"progress":  progress,
		"createdAt": createdAt,
		"updatedAt": updatedAt,
		"metadata":  metadata,
	}

	if confidence.Valid {
		result["confidence"] = confidence.Float64
	}
	if processingTimeMs.Valid {
		result["processingTimeMs"] = processingTimeMs.Int64
	}
	if resultID.Valid {
		result["resultId"] = resultID.String
	}
	if errorCode.Valid {
		result["errorCode"] = errorCode.String
	}
	if errorMessage.Valid {
		result["errorMessage"] = errorMessage.String
	}
	if preset.Valid {
		result["preset"] = preset.String
	}

	return result, nil
}

// Ping checks database connectivity
func (p *PostgresClient) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the database connection
func (p *PostgresClient) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// GetStats returns connection pool statistics
func (p *PostgresClient) GetStats() sql.DBStats {
	return p.db.Stats()
}
