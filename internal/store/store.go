// -- internal/store/store.go --
// Description: PostgreSQL persistence for resolved view models and
// validation runs. Bulk writes use the pgx CopyFrom protocol; structured
// sub-documents travel as JSON.

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/bimgrid/ifcpanel-cli/api/schemas"
	"github.com/bimgrid/ifcpanel-cli/internal/validation"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DB is the slice of the pgx pool the store needs. Both *pgxpool.Pool and
// the pgxmock pool satisfy it.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store persists resolution and validation output.
type Store struct {
	db  DB
	log *zap.Logger
}

// New creates a store over an open pool.
func New(db DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, log: logger.Named("store")}
}

// PersistViews writes one batch of resolved view models under a run ID.
func (s *Store) PersistViews(ctx context.Context, runID string, views []schemas.ElementViewModel) error {
	if len(views) == 0 {
		return nil
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	rows := make([][]interface{}, len(views))
	for i, vm := range views {
		propsJSON, err := json.Marshal(vm.PropertySets)
		if err != nil {
			return fmt.Errorf("failed to marshal property sets for %s/%d: %w", vm.ModelID, vm.LocalID, err)
		}
		quantsJSON, err := json.Marshal(vm.QuantitySets)
		if err != nil {
			return fmt.Errorf("failed to marshal quantity sets for %s/%d: %w", vm.ModelID, vm.LocalID, err)
		}
		attrsJSON, err := json.Marshal(vm.Attributes)
		if err != nil {
			return fmt.Errorf("failed to marshal attributes for %s/%d: %w", vm.ModelID, vm.LocalID, err)
		}
		rows[i] = []interface{}{
			runID, now, vm.ModelID, vm.LocalID, vm.GlobalID, vm.Type, vm.Name,
			vm.Location, string(propsJSON), string(quantsJSON), string(attrsJSON),
		}
	}

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"resolved_elements"},
		[]string{"run_id", "resolved_at", "model_id", "local_id", "global_id", "ifc_type", "name", "location", "property_sets", "quantity_sets", "attributes"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to persist resolved elements: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.log.Info("resolved elements persisted", zap.String("run", runID), zap.Int("count", len(views)))
	return nil
}

// PersistValidation writes one validation report.
func (s *Store) PersistValidation(ctx context.Context, report *validation.Report) error {
	if report == nil || len(report.Results) == 0 {
		return nil
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	rows := make([][]interface{}, len(report.Results))
	for i, res := range report.Results {
		rows[i] = []interface{}{
			report.RunID, now, res.EntityType, res.GlobalID, res.ElementName,
			res.Check, res.Expected, res.Actual, string(res.Status), string(res.Level), res.Location,
		}
	}

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"validation_results"},
		[]string{"run_id", "checked_at", "entity_type", "global_id", "element_name", "check_name", "expected", "actual", "status", "level", "location"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to persist validation results: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.log.Info("validation results persisted", zap.String("run", report.RunID), zap.Int("count", len(rows)))
	return nil
}
