// -- internal/ghost/ghost.go --
// Description: Transactional translucent display mode. Activation snapshots
// every material's appearance and repaints it ghosted; deactivation writes
// every snapshot back exactly and drains the set. The snapshot map is only
// ever written during activation and only ever read during deactivation, so
// displayed and stored state cannot drift apart.

package ghost

import (
	"go.uber.org/zap"

	"github.com/bimgrid/ifcpanel-cli/internal/ifcmodel"
)

// State is the engine's display state.
type State int

const (
	StateNormal State = iota
	StateGhosted
)

// String implements fmt.Stringer.
func (s State) String() string {
	if s == StateGhosted {
		return "ghosted"
	}
	return "normal"
}

// Default ghosted appearance: a neutral tone at low opacity.
const (
	GhostColorHex = uint32(0x909496)
	GhostOpacity  = 0.12
)

// snapshot is the saved appearance of one material.
type snapshot struct {
	mat         *ifcmodel.Material
	colorHex    uint32
	hasColor    bool
	transparent bool
	opacity     float64
}

// Engine owns the ghost-mode state machine for one registry. It must only
// be driven from one call path at a time; re-entrant calls are rejected by
// the state check, not by a lock.
type Engine struct {
	registry  *ifcmodel.Registry
	log       *zap.Logger
	state     State
	snapshots map[string]snapshot

	ghostColor   uint32
	ghostOpacity float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithAppearance overrides the ghosted color and opacity. Zero values keep
// the defaults.
func WithAppearance(colorHex uint32, opacity float64) Option {
	return func(e *Engine) {
		if colorHex != 0 {
			e.ghostColor = colorHex
		}
		if opacity > 0 {
			e.ghostOpacity = opacity
		}
	}
}

// New creates a ghost engine over the given registry, starting in the
// normal state with an empty snapshot set.
func New(registry *ifcmodel.Registry, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		registry:     registry,
		log:          logger.Named("ghost"),
		snapshots:    make(map[string]snapshot),
		ghostColor:   GhostColorHex,
		ghostOpacity: GhostOpacity,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current display state.
func (e *Engine) State() State { return e.state }

// SnapshotCount reports how many materials are currently snapshotted.
// Zero whenever the engine is in the normal state.
func (e *Engine) SnapshotCount() int { return len(e.snapshots) }

// Toggle selects the one transition valid from the current state and
// performs it, returning the new state.
func (e *Engine) Toggle() State {
	if e.state == StateNormal {
		e.Activate()
	} else {
		e.Deactivate()
	}
	return e.state
}

// Activate transitions NORMAL→GHOSTED: snapshot and repaint every material
// of every loaded model. Materials carrying a custom ID are opted out and
// left untouched. Calling Activate while already ghosted is a no-op; the
// snapshot set never grows past one activation.
func (e *Engine) Activate() {
	if e.state == StateGhosted {
		return
	}

	e.registry.EachMaterial(func(modelID string, mat *ifcmodel.Material) {
		if mat.CustomID != "" {
			return
		}
		colorHex, hasColor := mat.ColorHex()
		e.snapshots[modelID+"/"+mat.ID] = snapshot{
			mat:         mat,
			colorHex:    colorHex,
			hasColor:    hasColor,
			transparent: mat.Transparent,
			opacity:     mat.Opacity,
		}
		mat.Transparent = true
		mat.Opacity = e.ghostOpacity
		mat.SetColorHex(e.ghostColor)
	})

	e.state = StateGhosted
	e.log.Info("ghost mode on", zap.Int("materials", len(e.snapshots)))
}

// Deactivate transitions GHOSTED→NORMAL: write back every snapshotted
// material exactly as recorded, then clear the snapshot set. Either every
// snapshotted material is restored or, when called in the normal state,
// none is touched.
func (e *Engine) Deactivate() {
	if e.state == StateNormal {
		return
	}

	for _, snap := range e.snapshots {
		snap.mat.Transparent = snap.transparent
		snap.mat.Opacity = snap.opacity
		if snap.hasColor {
			snap.mat.SetColorHex(snap.colorHex)
		}
	}
	restored := len(e.snapshots)
	clear(e.snapshots)

	e.state = StateNormal
	e.log.Info("ghost mode off", zap.Int("materials", restored))
}
