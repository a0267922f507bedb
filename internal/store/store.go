package store

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/politech/processor/internal/db"
)

// Init creates the redistricting schema and migrates its tables.
func Init(d *gorm.DB) error {
	if err := db.EnsureSchema(d, "redistricting"); err != nil {
		return fmt.Errorf("ensure schema redistricting: %w", err)
	}

	if err := d.AutoMigrate(
		&Precinct{},
		&DotPoint{},
		&Plan{},
		&PlanAssignment{},
	); err != nil {
		return fmt.Errorf("auto-migrate redistricting tables: %w", err)
	}

	// One row per precinct per state, so state reloads stay idempotent.
	if err := d.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS precincts_state_precinct_unique
        ON redistricting.precincts (state, precinct_id);
    `).Error; err != nil {
		return fmt.Errorf("create precincts_state_precinct_unique: %w", err)
	}

	return nil
}
