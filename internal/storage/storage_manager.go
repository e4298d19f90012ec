/**
 * Storage Manager for the OCR Worker
 *
 * Coordinates storage across PostgreSQL (jobs, result trees) and Qdrant
 * (layout fingerprints). A result is written to Qdrant first and the
 * point is removed again when the PostgreSQL insert fails.
 */

package storage

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StorageManager coordinates PostgreSQL and Qdrant operations
type StorageManager struct {
	postgres *PostgresClient
	qdrant   *QdrantClient
}

// RecognitionInput represents a recognition result to store
type RecognitionInput struct {
	JobID       string
	Text        string
	Confidence  float64
	WordCount   int
	Tree        []byte
	Parameters  map[string]string
	Changed     []string
	Fingerprint []float32
}

// RecognitionOutput identifies a stored result
type RecognitionOutput struct {
	ID            string
	JobID         string
	QdrantPointID string
	CreatedAt     time.Time
}

// SimilarLayout is one similar-layout search hit
type SimilarLayout struct {
	ResultID        string
	JobID           string
	QdrantPointID   string
	Text            string
	SimilarityScore float64
	CreatedAt       time.Time
}

// NewStorageManager creates a new storage manager
func NewStorageManager(postgresURL string, qdrantAddress string, qdrantCollection string, vectorSize int) (*StorageManager, error) {
	postgres, err := NewPostgresClient(postgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL client: %w", err)
	}

	if err := postgres.EnsureSchema(context.Background()); err != nil {
		postgres.Close()
		return nil, err
	}

	qdrant, err := NewQdrantClient(qdrantAddress, qdrantCollection, vectorSize)
	if err != nil {
		postgres.Close()
		return nil, fmt.Errorf("failed to initialize Qdrant client: %w", err)
	}

	return &StorageManager{
		postgres: postgres,
		qdrant:   qdrant,
	}, nil
}

func (sm *StorageManager) validate(input *RecognitionInput) error {
	if input == nil {
		return fmt.Errorf("input is required")
	}
	if input.JobID == "" {
		return fmt.Errorf("job ID is required")
	}
	if len(input.Tree) == 0 {
		return fmt.Errorf("result tree is required")
	}
	return sm.qdrant.checkDims(input.Fingerprint)
}

// StoreRecognition stores a result across Qdrant and PostgreSQL
func (sm *StorageManager) StoreRecognition(ctx context.Context, input *RecognitionInput) (*RecognitionOutput, error) {
	if err := sm.validate(input); err != nil {
		return nil, err
	}

	resultID := uuid.New().String()
	qdrantPointID := uuid.New().String()
	now := time.Now().Unix()

	// Step 1: vector first, it fails fast on a bad fingerprint
	err := sm.qdrant.UpsertVector(ctx, &VectorPoint{
		ID:     qdrantPointID,
		Vector: input.Fingerprint,
		Metadata: map[string]interface{}{
			"job_id":     input.JobID,
			"result_id":  resultID,
			"word_count": input.WordCount,
			"confidence": input.Confidence,
		},
		Timestamp: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store fingerprint in Qdrant: %w", err)
	}

	params := input.Parameters
	if params == nil {
		params = map[string]string{}
	}
	changed := input.Changed
	if changed == nil {
		changed = []string{}
	}

	// Step 2: result row
	createdAt, err := sm.postgres.insertRecognition(ctx, &RecognitionRecord{
		ID:            resultID,
		JobID:         input.JobID,
		Text:          input.Text,
		Confidence:    input.Confidence,
		WordCount:     input.WordCount,
		Tree:          input.Tree,
		Parameters:    params,
		Fingerprint:   input.Fingerprint,
		QdrantPointID: qdrantPointID,
	}, changed)
	if err != nil {
		if delErr := sm.qdrant.DeleteVector(ctx, qdrantPointID); delErr != nil {
			return nil, fmt.Errorf("%w (rollback of point %s failed: %v)", err, qdrantPointID, delErr)
		}
		return nil, err
	}

	return &RecognitionOutput{
		ID:            resultID,
		JobID:         input.JobID,
		QdrantPointID: qdrantPointID,
		CreatedAt:     createdAt,
	}, nil
}

// GetRecognition retrieves a stored result
func (sm *StorageManager) GetRecognition(ctx context.Context, resultID string) (*RecognitionRecord, error) {
	return sm.postgres.GetRecognition(ctx, resultID)
}

// SearchSimilarLayouts finds stored pages whose fingerprint is close to the query
func (sm *StorageManager) SearchSimilarLayouts(ctx context.Context, fingerprint []float32, limit int, minScore float32) ([]*SimilarLayout, error) {
	points, err := sm.qdrant.SearchVectors(ctx, fingerprint, limit, minScore)
	if err != nil {
		return nil, fmt.Errorf("failed to search fingerprints: %w", err)
	}

	results := make([]*SimilarLayout, 0, len(points))
	for _, point := range points {
		resultID, ok := point.Metadata["result_id"].(string)
		if !ok {
			continue
		}

		rec, err := sm.postgres.GetRecognition(ctx, resultID)
		if err != nil {
			// point without a row: a rollback that lost its delete
			continue
		}

		results = append(results, &SimilarLayout{
			ResultID:        resultID,
			JobID:           rec.JobID,
			QdrantPointID:   point.ID,
			Text:            rec.Text,
			SimilarityScore: float64(point.Score),
			CreatedAt:       rec.CreatedAt,
		})
	}

	return results, nil
}

// SearchSimilarToResult finds layouts close to an already stored result,
// excluding the result itself
func (sm *StorageManager) SearchSimilarToResult(ctx context.Context, resultID string, limit int, minScore float32) ([]*SimilarLayout, error) {
	rec, err := sm.postgres.GetRecognition(ctx, resultID)
	if err != nil {
		return nil, err
	}

	point, err := sm.qdrant.GetVector(ctx, rec.QdrantPointID)
	if err != nil {
		return nil, fmt.Errorf("failed to get fingerprint from Qdrant: %w", err)
	}

	hits, err := sm.SearchSimilarLayouts(ctx, point.Vector, limit+1, minScore)
	if err != nil {
		return nil, err
	}

	results := make([]*SimilarLayout, 0, len(hits))
	for _, hit := range hits {
		if hit.ResultID == resultID {
			continue
		}
		if limit > 0 && len(results) == limit {
			break
		}
		results = append(results, hit)
	}
	return results, nil
}

// UpdateJobStatus updates job status in PostgreSQL
func (sm *StorageManager) UpdateJobStatus(ctx context.Context, update *JobUpdate) error {
	return sm.postgres.UpdateJobStatus(ctx, update)
}

// GetJobByID retrieves job by ID
func (sm *StorageManager) GetJobByID(ctx context.Context, jobID string) (map[string]interface{}, error) {
	return sm.postgres.GetJobByID(ctx, jobID)
}

// Ping checks PostgreSQL connectivity
func (sm *StorageManager) Ping(ctx context.Context) error {
	return sm.postgres.Ping(ctx)
}

// GetStats returns statistics from both systems
func (sm *StorageManager) GetStats(ctx context.Context) (map[string]interface{}, error) {
	pgStats := sm.postgres.GetStats()

	qdrantStats, err := sm.qdrant.GetCollectionInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Qdrant stats: %w", err)
	}

	return map[string]interface{}{
		"postgres": map[string]interface{}{
			"max_open_connections": pgStats.MaxOpenConnections,
			"open_connections":     pgStats.OpenConnections,
			"in_use":               pgStats.InUse,
			"idle":                 pgStats.Idle,
			"wait_count":           pgStats.WaitCount,
			"wait_duration":        pgStats.WaitDuration.String(),
		},
		"qdrant": qdrantStats,
	}, nil
}

// Close closes all connections
func (sm *StorageManager) Close() error {
	var pgErr, qdErr error

	if sm.postgres != nil {
		pgErr = sm.postgres.Close()
	}

	if sm.qdrant != nil {
		qdErr = sm.qdrant.Close()
	}

	if pgErr != nil {
		return fmt.Errorf("failed to close PostgreSQL: %w", pgErr)
	}

	if qdErr != nil {
		return fmt.Errorf("failed to close Qdrant: %w", qdErr)
	}

	return nil
}

var (
	nullEscape    = regexp.MustCompile(`\\u0000`)
	controlEscape = regexp.MustCompile(`\\u00[01][0-9a-fA-F]`)
)

// sanitizeJSONForPostgres drops \u0000 escapes, which JSONB rejects, and
// turns the other control character escapes into spaces.
func sanitizeJSONForPostgres(jsonBytes []byte) []byte {
	result := nullEscape.ReplaceAll(jsonBytes, []byte{})
	return controlEscape.ReplaceAll(result, []byte(" "))
}

// stripNullRunes removes NUL, which TEXT columns reject
func stripNullRunes(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}
