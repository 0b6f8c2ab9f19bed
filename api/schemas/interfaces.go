// -- api/schemas/interfaces.go --
package schemas

import "context"

// BundleProvider fetches the raw relational bundle for a single element.
// Implementations may be backed by an on-disk loader dump or a remote loader
// sidecar; either way a failed fetch affects only that element.
type BundleProvider interface {
	FetchBundle(ctx context.Context, modelID string, localID int64) (RawRecord, error)
}

// Renderer is the presentation sink for resolved view models. It is only
// ever handed the output of the freshest selection batch; stale batches are
// dropped before reaching it.
type Renderer interface {
	// Render replaces the panel contents with the given views, in selection order.
	Render(views []ElementViewModel)
	// Clear empties the panel.
	Clear()
}
