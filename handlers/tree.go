package handlers

import (
	"database/sql"
	"io"
	"log"
	"net/http"

	"github.com/jasepellerin/family-tree/database"
	"github.com/jasepellerin/family-tree/exchange"
	"github.com/jasepellerin/family-tree/layout"
	"github.com/jasepellerin/family-tree/repository"
	"github.com/jasepellerin/family-tree/tree"
)

// TreeHandler serves whole-collection operations: layout, export, import
// and aggregate stats.
type TreeHandler struct {
	Store          *tree.Store
	Repo           repository.PersonRepositoryInterface
	SQLDB          *sql.DB
	MaxImportBytes int64
}

// GetLayout recomputes the full layout from the current snapshot.
func (th *TreeHandler) GetLayout(w http.ResponseWriter, r *http.Request) {
	result := layout.Compute(th.Store.Snapshot())
	writeJSON(w, http.StatusOK, result)
}

// ExportTree serves the collection as a downloadable versioned JSON
// document.
func (th *TreeHandler) ExportTree(w http.ResponseWriter, r *http.Request) {
	data, err := exchange.Export(th.Store.Snapshot())
	if err != nil {
		log.Printf("Error exporting tree: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "export_failed", "Failed to export tree")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="family-tree.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ImportTree validates an uploaded document and replaces the whole
// collection with its contents. Nothing is applied when validation fails.
func (th *TreeHandler) ImportTree(w http.ResponseWriter, r *http.Request) {
	limit := th.MaxImportBytes
	if limit <= 0 {
		limit = 20 << 20
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Failed to read import document: "+err.Error())
		return
	}

	people, err := exchange.Import(data)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_document", err.Error())
		return
	}

	th.Store.Replace(people)
	if err := th.Repo.ReplaceAll(th.Store.Snapshot()); err != nil {
		log.Printf("Error persisting imported tree: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "persistence_failed", "Tree was imported in memory but could not be saved")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"imported": len(people),
	})
}

// GetStats serves collection aggregates computed in the database.
func (th *TreeHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := database.GetTreeStats(th.SQLDB)
	if err != nil {
		log.Printf("Error computing tree stats: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "stats_failed", "Failed to compute tree stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
