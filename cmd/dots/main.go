package main

import (
	"flag"
	"log"
	"os"

	"github.com/politech/processor/internal/dots"
	"github.com/politech/processor/internal/states"
)

func main() {
	var (
		state      = flag.String("state", "", "two-letter state code (required)")
		base       = flag.String("base", ".", "workspace directory holding inputs/ and outputs/")
		acsYear    = flag.Int("acs-year", 2023, "ACS 5-year vintage")
		censusYear = flag.Int("census-year", 2020, "TIGER geometry vintage")
		dotUnit    = flag.Int("dot-unit", 50, "people per dot")
		seed       = flag.Int64("seed", 42, "random seed for reproducible dot placement")
	)
	flag.Parse()

	if *state == "" {
		flag.Usage()
		os.Exit(2)
	}

	st, err := states.Lookup(*state)
	if err != nil {
		log.Fatal(err)
	}

	cfg := dots.Config{
		Workspace: states.NewWorkspace(*base, st, *acsYear, *censusYear),
		DotUnit:   *dotUnit,
		Seed:      *seed,
	}

	if err := dots.Run(cfg); err != nil {
		log.Fatal(err)
	}
}
