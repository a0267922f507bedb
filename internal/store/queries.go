package store

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/politech/processor/internal/db"
)

// PrecinctsByState returns every precinct loaded for a state.
func PrecinctsByState(ctx context.Context, state string) ([]Precinct, error) {
	var out []Precinct
	if err := db.DB.WithContext(ctx).Where("state = ?", state).Order("precinct_id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("query precincts for %s: %w", state, err)
	}
	return out, nil
}

// DotsByState returns a state's dot layer, optionally restricted to a set
// of population groups.
func DotsByState(ctx context.Context, state string, groups []string) ([]DotPoint, error) {
	query := `
		SELECT id, state, dot_group, bg_geoid, lon, lat
		FROM redistricting.dots
		WHERE state = $1
	`
	args := []interface{}{state}
	if len(groups) > 0 {
		query += ` AND dot_group = ANY($2)`
		args = append(args, pq.Array(groups))
	}

	rows, err := db.DB.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, fmt.Errorf("query dots for %s: %w", state, err)
	}
	defer rows.Close()

	var out []DotPoint
	for rows.Next() {
		var d DotPoint
		if err := rows.Scan(&d.ID, &d.State, &d.Group, &d.BGGeoID, &d.Lon, &d.Lat); err != nil {
			return nil, fmt.Errorf("scan dot: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// PlansByState lists plans, all of them when state is empty.
func PlansByState(ctx context.Context, state string) ([]Plan, error) {
	q := db.DB.WithContext(ctx).Order("plan_id")
	if state != "" {
		q = q.Where("state = ?", state)
	}
	var out []Plan
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	return out, nil
}

// PlanByID fetches one plan.
func PlanByID(ctx context.Context, planID string) (*Plan, error) {
	var p Plan
	if err := db.DB.WithContext(ctx).Where("plan_id = ?", planID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// AssignmentsByPlan returns every precinct assignment under a plan.
func AssignmentsByPlan(ctx context.Context, planID string) ([]PlanAssignment, error) {
	var out []PlanAssignment
	if err := db.DB.WithContext(ctx).Where("plan_id = ?", planID).Order("precinct_id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("query assignments for %s: %w", planID, err)
	}
	return out, nil
}

// DistrictTotal is one district's rollup from loaded precincts.
type DistrictTotal struct {
	DistrictID int   `json:"district_id"`
	Precincts  int   `json:"precincts"`
	TotalPop   int64 `json:"total_pop"`
	TotalCVAP  int64 `json:"total_cvap"`
	Households int64 `json:"households"`
}

// DistrictTotalsByPlan joins a plan's assignments onto the precinct table
// and sums population, CVAP, and households per district.
func DistrictTotalsByPlan(ctx context.Context, planID string) ([]DistrictTotal, error) {
	query := `
		SELECT a.district_id,
		       COUNT(p.id) AS precincts,
		       COALESCE(SUM(p.total_pop), 0) AS total_pop,
		       COALESCE(SUM(p.total_cvap), 0) AS total_cvap,
		       COALESCE(SUM(p.households), 0) AS households
		FROM redistricting.assignments a
		JOIN redistricting.precincts p
		  ON p.state = a.state AND p.precinct_id = a.precinct_id
		WHERE a.plan_id = $1
		GROUP BY a.district_id
		ORDER BY a.district_id
	`

	rows, err := db.DB.WithContext(ctx).Raw(query, planID).Rows()
	if err != nil {
		return nil, fmt.Errorf("district totals for %s: %w", planID, err)
	}
	defer rows.Close()

	var out []DistrictTotal
	for rows.Next() {
		var t DistrictTotal
		if err := rows.Scan(&t.DistrictID, &t.Precincts, &t.TotalPop, &t.TotalCVAP, &t.Households); err != nil {
			return nil, fmt.Errorf("scan district total: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
