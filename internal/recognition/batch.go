package recognition

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/adverant/nexus/ocr-worker/internal/engine"
	"github.com/adverant/nexus/ocr-worker/internal/params"
	"github.com/adverant/nexus/ocr-worker/internal/pix"
)

// Job is one independent input for RunBatch. Jobs must not share an
// engine, image or registry.
type Job struct {
	Engine   engine.Engine
	Image    *pix.Handle
	Registry *params.Registry
	Options  Options
}

// RunBatch runs jobs with at most limit in flight and returns one terminal
// operation per job, in job order. A failing or cancelled job does not stop
// the others; inspect each operation's State and Err. Cancelling ctx stops
// running jobs at their next checkpoint and the rest at their first.
func RunBatch(ctx context.Context, jobs []Job, limit int) []*Operation {
	ops := make([]*Operation, len(jobs))
	for i, j := range jobs {
		ops[i] = New(j.Engine, j.Image, j.Registry, j.Options)
	}

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, op := range ops {
		op := op
		g.Go(func() error {
			_ = op.Start(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return ops
}
