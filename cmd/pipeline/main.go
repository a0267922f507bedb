package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/politech/processor/internal/aggregate"
	"github.com/politech/processor/internal/census"
	"github.com/politech/processor/internal/dots"
	"github.com/politech/processor/internal/plans"
	"github.com/politech/processor/internal/render"
	"github.com/politech/processor/internal/states"
	"github.com/politech/processor/internal/store"
)

type stage struct {
	name string
	run  func() error
}

// parseStages accepts comma lists and ranges, e.g. "0,1,2" or "1-3".
func parseStages(s string, max int) ([]int, error) {
	selected := map[int]bool{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err := strconv.Atoi(lo)
			if err != nil {
				return nil, fmt.Errorf("invalid stage range %q", part)
			}
			end, err := strconv.Atoi(hi)
			if err != nil {
				return nil, fmt.Errorf("invalid stage range %q", part)
			}
			if start > end {
				return nil, fmt.Errorf("invalid stage range %q", part)
			}
			for i := start; i <= end; i++ {
				selected[i] = true
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid stage %q", part)
		}
		selected[n] = true
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no stages selected")
	}
	var out []int
	for i := 0; i <= max; i++ {
		if selected[i] {
			out = append(out, i)
		}
	}
	for n := range selected {
		if n < 0 || n > max {
			return nil, fmt.Errorf("stage %d out of range 0-%d", n, max)
		}
	}
	return out, nil
}

func main() {
	var (
		state      = flag.String("state", "", "two-letter state code (required)")
		base       = flag.String("base", ".", "workspace directory holding inputs/ and outputs/")
		acsYear    = flag.Int("acs-year", 2023, "ACS 5-year vintage")
		censusYear = flag.Int("census-year", 2020, "TIGER geometry vintage")
		planYear   = flag.Int("plan-year", 2022, "year of the adopted plans")
		tigerYear  = flag.Int("tiger-plan-year", 2025, "TIGER vintage for district plans")
		dotUnit    = flag.Int("dot-unit", 50, "people per dot")
		seed       = flag.Int64("seed", 42, "random seed for reproducible dot placement")
		stagesArg  = flag.String("stages", "0-5", "stages to run, e.g. \"0,1,2\" or \"1-3\"")
		skipFetch  = flag.Bool("skip-fetch", false, "skip stage 0 even when selected")
		dbURL      = flag.String("db", "", "DATABASE_URL (defaults to the environment variable)")
	)
	flag.Parse()

	if *state == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load(".env.local")

	st, err := states.Lookup(*state)
	if err != nil {
		log.Fatal(err)
	}
	ws := states.NewWorkspace(*base, st, *acsYear, *censusYear)

	selected, err := parseStages(*stagesArg, 5)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	dsn := *dbURL
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}

	stages := []stage{
		{"fetch", func() error {
			return census.Run(ctx, census.Config{Workspace: ws, PlanYear: *tigerYear})
		}},
		{"aggregate", func() error {
			return aggregate.Run(aggregate.Config{Workspace: ws})
		}},
		{"assign", func() error {
			return plans.Run(plans.Config{Workspace: ws, PlanYear: *planYear})
		}},
		{"dots", func() error {
			return dots.Run(dots.Config{Workspace: ws, DotUnit: *dotUnit, Seed: *seed})
		}},
		{"render", func() error {
			return render.Run(render.Config{Workspace: ws, DotUnit: *dotUnit, PlanYear: *planYear})
		}},
		{"load", func() error {
			if dsn == "" {
				return fmt.Errorf("stage 5 needs DATABASE_URL")
			}
			return store.Run(ctx, store.Config{Workspace: ws, DotUnit: *dotUnit, PlanYear: *planYear, DatabaseURL: dsn})
		}},
	}

	start := time.Now()
	var ran []string
	for _, n := range selected {
		if n == 0 && *skipFetch {
			log.Printf("[pipeline] skipping stage 0 (fetch)")
			continue
		}
		s := stages[n]
		log.Printf("[pipeline] stage %d (%s) for %s", n, s.name, st.Abbr)
		stageStart := time.Now()
		if err := s.run(); err != nil {
			if len(ran) > 0 {
				log.Printf("[pipeline] completed before failure: %s", strings.Join(ran, ", "))
			}
			log.Fatalf("[pipeline] stage %d (%s) failed: %v", n, s.name, err)
		}
		log.Printf("[pipeline] stage %d (%s) done in %s", n, s.name, time.Since(stageStart).Round(time.Millisecond))
		ran = append(ran, s.name)
	}
	log.Printf("[pipeline] finished %s in %s", strings.Join(ran, ", "), time.Since(start).Round(time.Millisecond))
}
