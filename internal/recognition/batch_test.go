package recognition

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/adverant/nexus/ocr-worker/internal/engine/enginetest"
	werrors "github.com/adverant/nexus/ocr-worker/internal/errors"
	"github.com/adverant/nexus/ocr-worker/internal/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBatchIndependentJobs(t *testing.T) {
	base := params.NewRegistry()
	require.NoError(t, base.Set("tessedit_char_whitelist", params.String("0123456789")))

	var jobs []Job
	for i := 0; i < 6; i++ {
		eng := enginetest.New("a1 b2 c3")
		if i == 3 {
			eng.Reject = map[string]bool{"tessedit_char_whitelist": true}
		}
		jobs = append(jobs, Job{
			Engine:   eng,
			Image:    image(t),
			Registry: base.Clone(),
		})
	}

	ops := RunBatch(context.Background(), jobs, 2)
	require.Len(t, ops, len(jobs))
	for i, op := range ops {
		if i == 3 {
			assert.Equal(t, StateFailed, op.State())
			assert.True(t, stderrors.Is(op.Err(), werrors.ErrFailed))
			continue
		}
		require.Equal(t, StateCompleted, op.State(), "job %d", i)
		root, err := op.Result()
		require.NoError(t, err)
		assert.Equal(t, "123", root.LeafText())
	}
}

func TestRunBatchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []Job{
		{Engine: enginetest.New("x y"), Image: image(t), Registry: params.NewRegistry()},
		{Engine: enginetest.New("x y"), Image: image(t), Registry: params.NewRegistry()},
	}
	for _, op := range RunBatch(ctx, jobs, 0) {
		assert.Equal(t, StateCancelled, op.State())
	}
}
