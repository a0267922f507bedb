package main

import (
	"flag"
	"log"
	"os"

	"github.com/politech/processor/internal/aggregate"
	"github.com/politech/processor/internal/states"
)

func main() {
	var (
		state      = flag.String("state", "", "two-letter state code (required)")
		base       = flag.String("base", ".", "workspace directory holding inputs/ and outputs/")
		acsYear    = flag.Int("acs-year", 2023, "ACS 5-year vintage")
		censusYear = flag.Int("census-year", 2020, "TIGER geometry vintage")
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

	cfg := aggregate.Config{
		Workspace: states.NewWorkspace(*base, st, *acsYear, *censusYear),
	}

	if err := aggregate.Run(cfg); err != nil {
		log.Fatal(err)
	}
}
