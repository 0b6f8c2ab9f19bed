// -- internal/selection/engine.go --
// Description: Resolves selection batches. Each incoming selection gets a
// monotonically increasing generation token; per-element bundle fetches fan
// out concurrently, and a batch superseded by a newer selection is allowed to
// finish but its output is dropped before it ever reaches the renderer.

package selection

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimgrid/ifcpanel-cli/api/schemas"
	"github.com/bimgrid/ifcpanel-cli/internal/resolve"
)

// ErrStaleBatch reports that a batch completed after a newer selection had
// already superseded it. Its results were discarded; nothing was rendered.
var ErrStaleBatch = errors.New("selection batch superseded")

// defaultConcurrency bounds in-flight bundle fetches per batch.
const defaultConcurrency = 8

// Engine resolves selections into ordered collections of view models.
type Engine struct {
	provider    schemas.BundleProvider
	resolver    *resolve.Resolver
	renderer    schemas.Renderer
	log         *zap.Logger
	concurrency int

	// generation is bumped at the start of every batch and compared before
	// committing output. Cancellation is cooperative: superseded fetches run
	// to completion and are dropped.
	generation atomic.Uint64

	// commitMu makes the staleness check and the renderer commit one atomic
	// step. Without it a batch could pass the check, lose the CPU to a newer
	// batch that fully commits, and then overwrite the newer output.
	commitMu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithRenderer attaches a presentation sink. When set, every committed batch
// is pushed to it and an empty selection clears it.
func WithRenderer(r schemas.Renderer) Option {
	return func(e *Engine) { e.renderer = r }
}

// WithConcurrency bounds the number of in-flight fetches per batch.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// New creates a selection Engine backed by the given provider.
func New(provider schemas.BundleProvider, resolver *resolve.Resolver, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		provider:    provider,
		resolver:    resolver,
		log:         logger.Named("selection"),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// target is one (model, element) pair of a batch, in selection order.
type target struct {
	modelID string
	localID int64
}

// Select resolves one selection batch and returns the view models in
// selection order. An empty selection clears the renderer and returns nil.
// A fetch failure for one element logs and skips that element; it never
// aborts the batch. If a newer selection supersedes this one while fetches
// are in flight, Select returns ErrStaleBatch and commits nothing.
func (e *Engine) Select(ctx context.Context, sel schemas.Selection) ([]schemas.ElementViewModel, error) {
	gen := e.generation.Add(1)

	if len(sel) == 0 {
		e.commitMu.Lock()
		defer e.commitMu.Unlock()
		if e.current(gen) && e.renderer != nil {
			e.renderer.Clear()
		}
		return nil, nil
	}

	targets := flatten(sel)
	views := make([]*schemas.ElementViewModel, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, tgt := range targets {
		g.Go(func() error {
			bundle, err := e.provider.FetchBundle(gctx, tgt.modelID, tgt.localID)
			if err != nil {
				e.log.Warn("bundle fetch failed, skipping element",
					zap.String("model", tgt.modelID),
					zap.Int64("element", tgt.localID),
					zap.Error(err))
				return nil
			}
			vm := e.resolver.Resolve(tgt.modelID, tgt.localID, bundle)
			views[i] = &vm
			return nil
		})
	}
	// Per-element errors are swallowed above, so Wait only surfaces context
	// cancellation from gctx.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]schemas.ElementViewModel, 0, len(views))
	for _, vm := range views {
		if vm != nil {
			out = append(out, *vm)
		}
	}

	e.commitMu.Lock()
	defer e.commitMu.Unlock()
	if !e.current(gen) {
		e.log.Debug("dropping stale batch", zap.Uint64("generation", gen))
		return nil, ErrStaleBatch
	}
	if e.renderer != nil {
		e.renderer.Render(out)
	}
	return out, nil
}

// current reports whether gen is still the freshest batch.
func (e *Engine) current(gen uint64) bool {
	return e.generation.Load() == gen
}

// flatten orders a selection deterministically: models sorted by ID, element
// IDs in the order they were selected within each model.
func flatten(sel schemas.Selection) []target {
	modelIDs := make([]string, 0, len(sel))
	for id := range sel {
		modelIDs = append(modelIDs, id)
	}
	sort.Strings(modelIDs)

	var targets []target
	for _, modelID := range modelIDs {
		for _, localID := range sel[modelID] {
			targets = append(targets, target{modelID: modelID, localID: localID})
		}
	}
	return targets
}
