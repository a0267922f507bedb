// Package store persists pipeline outputs to Postgres: precincts and dots
// per state, plans and assignments shared across states.
package store

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Precinct is one election precinct with its demographics and GeoJSON
// geometry. Demographics stay as a jsonb blob because the column set
// varies by state and ACS year.
type Precinct struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	State      string          `gorm:"index;size:2" json:"state"`
	PrecinctID string          `gorm:"size:100" json:"precinct_id"` // UNIQUE_ID from the source shapefile
	CountyFIPS string          `gorm:"size:3" json:"county_fips"`
	CountyName string          `json:"county_name"`
	Name       string          `json:"name"`
	TotalPop   int64           `json:"total_pop"`
	TotalCVAP  int64           `json:"total_cvap"`
	Households int64           `json:"households"`
	Attributes json.RawMessage `gorm:"type:jsonb" json:"attributes"`
	Geometry   json.RawMessage `gorm:"type:jsonb" json:"geometry"`
}

func (Precinct) TableName() string {
	return "redistricting.precincts"
}

// DotPoint is one dot of the dot-density layer. Loaded in bulk, so the
// table stays narrow.
type DotPoint struct {
	ID      int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	State   string  `gorm:"index:idx_dots_state_group;size:2" json:"state"`
	Group   string  `gorm:"index:idx_dots_state_group;column:dot_group;size:20" json:"group"`
	BGGeoID string  `gorm:"column:bg_geoid;size:12" json:"bg_geoid"`
	Lon     float64 `json:"lon"`
	Lat     float64 `json:"lat"`
}

func (DotPoint) TableName() string {
	return "redistricting.dots"
}

// Plan is one adopted redistricting plan, shared across states.
type Plan struct {
	PlanID       string `gorm:"primaryKey;size:100" json:"plan_id"`
	State        string `gorm:"index;size:2" json:"state"`
	StateName    string `json:"state_name"`
	Chamber      string `gorm:"size:10" json:"chamber"`
	Year         int    `json:"year"`
	Cycle        int    `json:"cycle"`
	Source       string `json:"source"`
	Name         string `json:"name"`
	NumDistricts int    `json:"num_districts"`
}

func (Plan) TableName() string {
	return "redistricting.plans"
}

// PlanAssignment maps one precinct to its district under one plan. The ID
// is deterministic on (plan_id, precinct_id) so re-runs upsert in place.
type PlanAssignment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	State      string    `gorm:"index;size:2" json:"state"`
	PlanID     string    `gorm:"uniqueIndex:idx_assignments_plan_precinct;size:100" json:"plan_id"`
	PrecinctID string    `gorm:"uniqueIndex:idx_assignments_plan_precinct;size:100" json:"precinct_id"`
	DistrictID int       `gorm:"index" json:"district_id"`
}

func (PlanAssignment) TableName() string {
	return "redistricting.assignments"
}
