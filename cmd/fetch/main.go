package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/politech/processor/internal/census"
	"github.com/politech/processor/internal/states"
)

func main() {
	var (
		state      = flag.String("state", "", "two-letter state code (required)")
		base       = flag.String("base", ".", "workspace directory holding inputs/ and outputs/")
		acsYear    = flag.Int("acs-year", 2023, "ACS 5-year vintage")
		censusYear = flag.Int("census-year", 2020, "TIGER geometry vintage")
		planYear   = flag.Int("plan-year", 2025, "TIGER vintage for district plans")
		skipPlans  = flag.Bool("skip-plans", false, "skip downloading district plans")
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

	cfg := census.Config{
		Workspace: states.NewWorkspace(*base, st, *acsYear, *censusYear),
		PlanYear:  *planYear,
		SkipPlans: *skipPlans,
	}

	if err := census.Run(context.Background(), cfg); err != nil {
		log.Fatal(err)
	}
}
