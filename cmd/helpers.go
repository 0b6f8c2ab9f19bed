// -- cmd/helpers.go --
package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/bimgrid/ifcpanel-cli/api/schemas"
	"github.com/bimgrid/ifcpanel-cli/internal/config"
	"github.com/bimgrid/ifcpanel-cli/internal/provider"
)

// newProvider builds the bundle provider selected by the configuration.
func newProvider(cfg config.ProviderConfig, logger *zap.Logger) (schemas.BundleProvider, error) {
	switch cfg.Mode {
	case "file":
		if len(cfg.Dumps) == 0 {
			return nil, fmt.Errorf("provider.dumps is empty; pass --dump or set IFCPANEL_PROVIDER_DUMPS")
		}
		return provider.NewFileProvider(cfg.Dumps, logger)
	case "http":
		return provider.NewHTTPProvider(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown provider mode %q", cfg.Mode)
	}
}

// parseSelection converts "model:1,2,3" arguments into a selection. A bare
// argument without a colon selects every element the file provider knows for
// that model, resolved by the caller.
func parseSelection(args []string) (schemas.Selection, []string, error) {
	sel := make(schemas.Selection)
	var wholeModels []string
	for _, arg := range args {
		modelID, rawIDs, ok := strings.Cut(arg, ":")
		if modelID == "" {
			return nil, nil, fmt.Errorf("invalid selection %q: empty model id", arg)
		}
		if !ok {
			wholeModels = append(wholeModels, modelID)
			continue
		}
		for _, raw := range strings.Split(rawIDs, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid selection %q: %w", arg, err)
			}
			sel[modelID] = append(sel[modelID], id)
		}
	}
	return sel, wholeModels, nil
}

// expandWholeModels fills in the local IDs for bare model arguments using the
// file provider's index.
func expandWholeModels(sel schemas.Selection, wholeModels []string, fp *provider.FileProvider) error {
	for _, modelID := range wholeModels {
		ids := fp.LocalIDs(modelID)
		if len(ids) == 0 {
			return fmt.Errorf("model %q has no elements in the loaded dumps", modelID)
		}
		sel[modelID] = append(sel[modelID], ids...)
	}
	return nil
}
