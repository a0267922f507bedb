package census

import (
	"context"
	"fmt"
	"os"

	"github.com/politech/processor/internal/geo"
	"github.com/politech/processor/internal/progress"
	"github.com/politech/processor/internal/states"
)

// Config drives the fetch stage: TIGER geometry, district plans, and ACS
// demographics for one state.
type Config struct {
	Workspace states.Workspace
	PlanYear  int
	SkipPlans bool
	APIKey    string
}

// Run downloads everything later stages read: block-group and block
// shapefiles, adopted plan boundaries, and the ACS race and income CSVs.
func Run(ctx context.Context, cfg Config) error {
	ws := cfg.Workspace
	progress.LogStage("fetch", "preparing inputs for %s (ACS %d, census %d)", ws.State.Name, ws.ACSYear, ws.CensusYear)

	if err := states.EnsureDirs(ws.TigerDir(), ws.ACSDir(), ws.PlansDir()); err != nil {
		return err
	}

	dl := NewDownloader()
	if err := dl.FetchGeometry(ctx, ws); err != nil {
		return err
	}

	bg, err := geo.ReadShapefile(ws.BGShapefile())
	if err != nil {
		return fmt.Errorf("load block groups: %w", err)
	}
	progress.LogStage("fetch", "loaded %d block groups from %s", bg.Len(), ws.BGShapefile())

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("CENSUS_API_KEY")
	}
	client, err := NewClient(apiKey)
	if err != nil {
		return err
	}

	if _, err := client.FetchRace(ctx, ws, bg); err != nil {
		return err
	}
	if _, err := client.FetchIncome(ctx, ws, bg); err != nil {
		return err
	}

	if cfg.SkipPlans {
		progress.LogStage("fetch", "skipping plan downloads")
		return nil
	}
	return dl.FetchPlans(ctx, ws, cfg.PlanYear)
}
