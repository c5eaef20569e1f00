package api

import (
	"net/http"

	"bloghub/internal/db"
)

// TestingHandler wipes every table. Exposed for black-box API test suites;
// keep it off production deployments.
type TestingHandler struct {
	database *db.DB
}

func NewTestingHandler(database *db.DB) *TestingHandler {
	return &TestingHandler{database: database}
}

func (h *TestingHandler) DeleteAllData(w http.ResponseWriter, r *http.Request) {
	if err := h.database.TruncateAll(); err != nil {
		internalError(w)
		return
	}

	noContent(w)
}
