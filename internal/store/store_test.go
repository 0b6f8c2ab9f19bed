// -- internal/store/store_test.go --
package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimgrid/ifcpanel-cli/api/schemas"
	"github.com/bimgrid/ifcpanel-cli/internal/store"
	"github.com/bimgrid/ifcpanel-cli/internal/validation"
)

func sampleViews() []schemas.ElementViewModel {
	return []schemas.ElementViewModel{
		{
			ModelID:  "model-a",
			LocalID:  311,
			GlobalID: "2O2Fr$t4X7Zf8NOew3FLOH",
			Type:     "IfcWallStandardCase",
			Name:     "Basic Wall:221",
			Location: "Level 2",
			QuantitySets: map[string]schemas.QuantitySet{
				"Qto_WallBaseQuantities": {"NetSideArea": {Value: 12.5, Unit: "m²"}},
			},
		},
	}
}

func TestStore_PersistViews(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCopyFrom(
		pgx.Identifier{"resolved_elements"},
		[]string{"run_id", "resolved_at", "model_id", "local_id", "global_id", "ifc_type", "name", "location", "property_sets", "quantity_sets", "attributes"},
	).WillReturnResult(1)
	mock.ExpectCommit()
	mock.ExpectRollback()

	s := store.New(mock, nil)
	require.NoError(t, s.PersistViews(context.Background(), "run-1", sampleViews()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_PersistViews_EmptyIsNoOp(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := store.New(mock, nil)
	require.NoError(t, s.PersistViews(context.Background(), "run-1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_PersistViews_BeginFailure(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	s := store.New(mock, nil)
	err = s.PersistViews(context.Background(), "run-1", sampleViews())
	assert.ErrorContains(t, err, "failed to begin transaction")
}

func TestStore_PersistValidation(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCopyFrom(
		pgx.Identifier{"validation_results"},
		[]string{"run_id", "checked_at", "entity_type", "global_id", "element_name", "check_name", "expected", "actual", "status", "level", "location"},
	).WillReturnResult(2)
	mock.ExpectCommit()
	mock.ExpectRollback()

	report := &validation.Report{
		RunID: "run-2",
		Results: []validation.Result{
			{EntityType: "IfcWallStandardCase", Check: "Pset_WallCommon.IsExternal", Status: validation.StatusPass, Level: validation.LevelInfo},
			{EntityType: "IfcWallStandardCase", Check: "Pset_WallCommon.FireRating", Status: validation.StatusFail, Level: validation.LevelCritical},
		},
	}

	s := store.New(mock, nil)
	require.NoError(t, s.PersistValidation(context.Background(), report))
	assert.NoError(t, mock.ExpectationsWereMet())
}
