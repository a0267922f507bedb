// Package api serves the loaded pipeline outputs over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	// Public routes
	r.Get("/states/{state}/precincts", GetPrecinctsByState)
	r.Get("/states/{state}/dots", GetDotsByState)
	r.Get("/plans", GetPlans)
	r.Get("/plans/{planID}", GetPlanByID)
	r.Get("/plans/{planID}/assignments", GetAssignmentsByPlan)
	r.Get("/plans/{planID}/stats", GetDistrictStatsByPlan)

	return r
}
