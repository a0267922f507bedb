package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/politech/processor/internal/geo"
	"github.com/politech/processor/internal/plans"
	"github.com/politech/processor/internal/progress"
	"github.com/politech/processor/internal/states"
)

// Config drives the database load stage for one state.
type Config struct {
	Workspace   states.Workspace
	DotUnit     int
	PlanYear    int
	DatabaseURL string
}

// precinctModel converts one precinct feature into its row.
func precinctModel(state, yy string, g geom.T, attrs map[string]interface{}) (Precinct, error) {
	precinctID := geo.String(attrs, "UNIQUE_ID")

	geometry, err := geojson.Marshal(g)
	if err != nil {
		return Precinct{}, fmt.Errorf("marshal geometry for precinct %s: %w", precinctID, err)
	}
	attributes, err := json.Marshal(attrs)
	if err != nil {
		return Precinct{}, fmt.Errorf("marshal attributes for precinct %s: %w", precinctID, err)
	}

	return Precinct{
		ID:         PrecinctRowID(state, precinctID),
		State:      state,
		PrecinctID: precinctID,
		CountyFIPS: geo.String(attrs, "COUNTYFP"),
		CountyName: geo.String(attrs, "COUNTY_NAM"),
		Name:       geo.String(attrs, "PRECINCTNA"),
		TotalPop:   int64(geo.Float(attrs, "TOT_POP"+yy)),
		TotalCVAP:  int64(geo.Float(attrs, "TOT_CVAP"+yy)),
		Households: int64(geo.Float(attrs, "TOT_HOUS"+yy)),
		Attributes: attributes,
		Geometry:   geometry,
	}, nil
}

// LoadPrecincts replaces the state's precinct rows with the given layer.
func LoadPrecincts(d *gorm.DB, state, yy string, layer *geo.Layer) error {
	rows := make([]Precinct, 0, layer.Len())
	for i, attrs := range layer.Attrs {
		row, err := precinctModel(state, yy, layer.Geoms[i], attrs)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	err := d.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("state = ?", state).Delete(&Precinct{}).Error; err != nil {
			return fmt.Errorf("delete precincts for %s: %w", state, err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 200).Error; err != nil {
			return fmt.Errorf("insert precincts for %s: %w", state, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	progress.LogStage("load", "replaced %d precincts for %s", len(rows), state)
	return nil
}

// LoadDots replaces the state's dot rows. Dot layers run to hundreds of
// thousands of points, so this goes through the COPY protocol.
func LoadDots(ctx context.Context, dsn, state string, layer *geo.Layer) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect for dot load: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, `DELETE FROM redistricting.dots WHERE state = $1`, state); err != nil {
		return fmt.Errorf("delete dots for %s: %w", state, err)
	}

	rows := make([][]interface{}, 0, layer.Len())
	for i, g := range layer.Geoms {
		pt, ok := g.(*geom.Point)
		if !ok {
			continue
		}
		attrs := layer.Attrs[i]
		rows = append(rows, []interface{}{
			state,
			geo.String(attrs, "group"),
			geo.String(attrs, "bg_geoid"),
			pt.X(),
			pt.Y(),
		})
	}

	n, err := conn.CopyFrom(ctx,
		pgx.Identifier{"redistricting", "dots"},
		[]string{"state", "dot_group", "bg_geoid", "lon", "lat"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy dots for %s: %w", state, err)
	}
	progress.LogStage("load", "replaced %d dots for %s", n, state)
	return nil
}

// UpsertPlans writes plan metadata, updating rows that already exist.
func UpsertPlans(d *gorm.DB, metas []plans.Meta) error {
	for _, m := range metas {
		row := Plan{
			PlanID:       m.PlanID,
			State:        m.State,
			StateName:    m.StateName,
			Chamber:      m.Chamber,
			Year:         m.Year,
			Cycle:        m.Cycle,
			Source:       m.Source,
			Name:         m.Name,
			NumDistricts: m.NumDistricts,
		}
		if err := d.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "plan_id"}},
			UpdateAll: true,
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("upsert plan %s: %w", m.PlanID, err)
		}
	}
	progress.LogStage("load", "upserted %d plans", len(metas))
	return nil
}

// UpsertAssignments writes precinct-to-district assignments, keyed on
// (plan_id, precinct_id) so re-runs update districts in place.
func UpsertAssignments(d *gorm.DB, assignments []plans.Assignment) error {
	rows := make([]PlanAssignment, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, PlanAssignment{
			ID:         AssignmentRowID(a.PlanID, a.PrecinctID),
			State:      a.State,
			PlanID:     a.PlanID,
			PrecinctID: a.PrecinctID,
			DistrictID: a.DistrictID,
		})
	}
	if len(rows) == 0 {
		return nil
	}

	if err := d.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "plan_id"}, {Name: "precinct_id"}},
		UpdateAll: true,
	}).CreateInBatches(rows, 500).Error; err != nil {
		return fmt.Errorf("upsert assignments: %w", err)
	}
	progress.LogStage("load", "upserted %d assignments", len(rows))
	return nil
}

// Run loads every output of the earlier stages into Postgres: precincts
// and dots replaced per state, plans and assignments upserted.
func Run(ctx context.Context, cfg Config) error {
	ws := cfg.Workspace
	state := strings.ToUpper(ws.State.Abbr)
	yy := ws.YearSuffix()

	d, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if err := Init(d); err != nil {
		return err
	}

	precincts, err := geo.ReadGeoJSON(ws.PrecinctGeoJSON())
	if err != nil {
		return fmt.Errorf("load precinct layer (run the aggregate stage first): %w", err)
	}
	if err := LoadPrecincts(d, state, yy, precincts); err != nil {
		return err
	}

	if dotLayer, err := geo.ReadGeoJSON(ws.DotsGeoJSON(cfg.DotUnit)); err == nil {
		if err := LoadDots(ctx, cfg.DatabaseURL, state, dotLayer); err != nil {
			return err
		}
	} else {
		progress.LogStage("load", "no dot layer for unit %d, skipping dots", cfg.DotUnit)
	}

	metas, err := plans.ReadPlans(ws.PlansJSON(cfg.PlanYear))
	if err != nil {
		progress.LogStage("load", "no plans for %d, skipping plans and assignments", cfg.PlanYear)
		return nil
	}
	if err := UpsertPlans(d, metas); err != nil {
		return err
	}

	assignments, err := plans.ReadAssignments(ws.AssignmentsJSON(cfg.PlanYear))
	if err != nil {
		return fmt.Errorf("load assignments: %w", err)
	}
	return UpsertAssignments(d, assignments)
}
