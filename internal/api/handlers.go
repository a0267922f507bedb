package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/politech/processor/internal/states"
	"github.com/politech/processor/internal/store"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// stateParam validates the {state} URL parameter against the registry and
// returns the canonical upper-case code.
func stateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	code := strings.ToUpper(chi.URLParam(r, "state"))
	if _, err := states.Lookup(code); err != nil {
		http.Error(w, "Unknown state code", http.StatusBadRequest)
		return "", false
	}
	return code, true
}

func GetPrecinctsByState(w http.ResponseWriter, r *http.Request) {
	state, ok := stateParam(w, r)
	if !ok {
		return
	}

	precincts, err := store.PrecinctsByState(r.Context(), state)
	if err != nil {
		log.Printf("[api] precincts query failed: %v", err)
		http.Error(w, "Failed to fetch precincts", http.StatusInternalServerError)
		return
	}
	if precincts == nil {
		precincts = []store.Precinct{}
	}
	writeJSON(w, precincts)
}

func GetDotsByState(w http.ResponseWriter, r *http.Request) {
	state, ok := stateParam(w, r)
	if !ok {
		return
	}

	var groups []string
	if raw := r.URL.Query().Get("group"); raw != "" {
		for _, g := range strings.Split(raw, ",") {
			if g = strings.TrimSpace(g); g != "" {
				groups = append(groups, g)
			}
		}
	}

	dots, err := store.DotsByState(r.Context(), state, groups)
	if err != nil {
		log.Printf("[api] dots query failed: %v", err)
		http.Error(w, "Failed to fetch dots", http.StatusInternalServerError)
		return
	}
	if dots == nil {
		dots = []store.DotPoint{}
	}
	writeJSON(w, dots)
}

func GetPlans(w http.ResponseWriter, r *http.Request) {
	state := strings.ToUpper(r.URL.Query().Get("state"))
	if state != "" {
		if _, err := states.Lookup(state); err != nil {
			http.Error(w, "Unknown state code", http.StatusBadRequest)
			return
		}
	}

	plans, err := store.PlansByState(r.Context(), state)
	if err != nil {
		log.Printf("[api] plans query failed: %v", err)
		http.Error(w, "Failed to fetch plans", http.StatusInternalServerError)
		return
	}
	if plans == nil {
		plans = []store.Plan{}
	}
	writeJSON(w, plans)
}

func GetPlanByID(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")

	plan, err := store.PlanByID(r.Context(), planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Plan not found", http.StatusNotFound)
			return
		}
		log.Printf("[api] plan query failed: %v", err)
		http.Error(w, "Failed to fetch plan", http.StatusInternalServerError)
		return
	}
	writeJSON(w, plan)
}

func GetAssignmentsByPlan(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")

	assignments, err := store.AssignmentsByPlan(r.Context(), planID)
	if err != nil {
		log.Printf("[api] assignments query failed: %v", err)
		http.Error(w, "Failed to fetch assignments", http.StatusInternalServerError)
		return
	}
	if assignments == nil {
		assignments = []store.PlanAssignment{}
	}
	writeJSON(w, assignments)
}

func GetDistrictStatsByPlan(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")

	if _, err := store.PlanByID(r.Context(), planID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Plan not found", http.StatusNotFound)
			return
		}
		log.Printf("[api] plan lookup failed: %v", err)
		http.Error(w, "Failed to fetch plan", http.StatusInternalServerError)
		return
	}

	totals, err := store.DistrictTotalsByPlan(r.Context(), planID)
	if err != nil {
		log.Printf("[api] district totals query failed: %v", err)
		http.Error(w, "Failed to compute district stats", http.StatusInternalServerError)
		return
	}
	if totals == nil {
		totals = []store.DistrictTotal{}
	}
	writeJSON(w, totals)
}
