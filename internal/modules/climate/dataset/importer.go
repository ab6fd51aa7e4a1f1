package dataset

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"climate-api/internal/modules/climate/types"
)

//go:embed sql/insert-station.sql
var insertStationSQL string

//go:embed sql/insert-measurement.sql
var insertMeasurementSQL string

// Import replaces the contents of the station and measurement tables in one
// transaction. Row ids follow slice order, which is the load order the
// query backends preserve.
func Import(ctx context.Context, db *sql.DB, stations []types.Station, measurements []types.Measurement) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM measurement; DELETE FROM station;`); err != nil {
		return fmt.Errorf("clear tables: %w", err)
	}

	stStmt, err := tx.PrepareContext(ctx, insertStationSQL)
	if err != nil {
		return fmt.Errorf("prepare station insert: %w", err)
	}
	defer func() { _ = stStmt.Close() }()
	for _, st := range stations {
		if _, err := stStmt.ExecContext(ctx, st.ID, st.Name, st.Latitude, st.Longitude, st.Elevation); err != nil {
			return fmt.Errorf("insert station %q: %w", st.ID, err)
		}
	}

	mStmt, err := tx.PrepareContext(ctx, insertMeasurementSQL)
	if err != nil {
		return fmt.Errorf("prepare measurement insert: %w", err)
	}
	defer func() { _ = mStmt.Close() }()
	for _, m := range measurements {
		var prcp any
		if m.Prcp != nil {
			prcp = *m.Prcp
		}
		if _, err := mStmt.ExecContext(ctx, m.StationID, m.Date, prcp, m.Tobs); err != nil {
			return fmt.Errorf("insert measurement %s/%s: %w", m.StationID, m.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}
