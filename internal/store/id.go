package store

import (
	"github.com/google/uuid"
)

// Namespace for deterministic v5 IDs. Re-running a load for the same state
// produces the same primary keys, which keeps upserts idempotent.
var namespace = uuid.MustParse("7b1f1e7c-9c4e-5b8a-a6f1-3d2e8c9b4a10")

func v5(name string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(name))
}

// PrecinctRowID builds the primary key for a precinct row.
func PrecinctRowID(state, precinctID string) uuid.UUID {
	return v5("precinct:" + state + ":" + precinctID)
}

// AssignmentRowID builds the primary key for an assignment row.
func AssignmentRowID(planID, precinctID string) uuid.UUID {
	return v5("assignment:" + planID + ":" + precinctID)
}
