// Package exchange encodes and decodes the portable family-tree document
// used for export, import and file-based backup.
package exchange

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jasepellerin/family-tree/models"
)

// DocumentVersion tags every exported document.
const DocumentVersion = "1.0.0"

// Document is the serialized exchange format. Order of the people list is
// preserved through export/import round trips.
type Document struct {
	Version string          `json:"version"`
	People  []models.Person `json:"people"`
}

// ErrMissingPeople is returned when a document does not carry a people
// list.
var ErrMissingPeople = errors.New("document has no people list")

// Export serializes the collection into a versioned JSON document.
func Export(people []models.Person) ([]byte, error) {
	if people == nil {
		people = []models.Person{}
	}
	doc := Document{Version: DocumentVersion, People: people}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode tree document: %w", err)
	}
	return data, nil
}

// Import parses and validates a document. The people list must be present;
// missing relationship sets are backfilled to empty, display names are
// re-derived, and ids must be unique and non-empty.
func Import(data []byte) ([]models.Person, error) {
	var raw struct {
		Version string           `json:"version"`
		People  *[]models.Person `json:"people"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse tree document: %w", err)
	}
	if raw.People == nil {
		return nil, ErrMissingPeople
	}

	people := *raw.People
	seen := make(map[string]bool, len(people))
	for i := range people {
		p := &people[i]
		if p.ID == "" {
			return nil, fmt.Errorf("person at index %d has no id", i)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate person id %q", p.ID)
		}
		seen[p.ID] = true
		p.NormalizeRelationshipSets()
		p.DisplayName = models.DeriveDisplayName(p)
	}
	return people, nil
}
