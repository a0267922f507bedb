package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/politech/processor/internal/states"
	"github.com/politech/processor/internal/store"
)

func main() {
	var (
		state      = flag.String("state", "", "two-letter state code (required)")
		base       = flag.String("base", ".", "workspace directory holding inputs/ and outputs/")
		acsYear    = flag.Int("acs-year", 2023, "ACS 5-year vintage")
		censusYear = flag.Int("census-year", 2020, "TIGER geometry vintage")
		planYear   = flag.Int("plan-year", 2022, "year of the adopted plans")
		dotUnit    = flag.Int("dot-unit", 50, "people per dot (must match the dots stage)")
		dbURL      = flag.String("db", "", "DATABASE_URL (defaults to the environment variable)")
	)
	flag.Parse()

	if *state == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load(".env.local")

	dsn := *dbURL
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}

	st, err := states.Lookup(*state)
	if err != nil {
		log.Fatal(err)
	}

	cfg := store.Config{
		Workspace:   states.NewWorkspace(*base, st, *acsYear, *censusYear),
		DotUnit:     *dotUnit,
		PlanYear:    *planYear,
		DatabaseURL: dsn,
	}

	if err := store.Run(context.Background(), cfg); err != nil {
		log.Fatal(err)
	}
}
