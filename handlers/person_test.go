package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasepellerin/family-tree/layout"
	"github.com/jasepellerin/family-tree/models"
	"github.com/jasepellerin/family-tree/tree"
)

// stubRepository satisfies the repository interface without a database.
type stubRepository struct {
	failSaves bool
}

func (s *stubRepository) LoadAll() ([]models.Person, error) { return nil, nil }
func (s *stubRepository) Create(person *models.Person) error {
	return s.err()
}
func (s *stubRepository) Update(person *models.Person) error { return s.err() }
func (s *stubRepository) UpdateMany(people []models.Person) error {
	return s.err()
}
func (s *stubRepository) UpdatePhotoPaths(id string, photoPath, thumbnailPath *string) error {
	return s.err()
}
func (s *stubRepository) ReplaceAll(people []models.Person) error { return s.err() }
func (s *stubRepository) err() error {
	if s.failSaves {
		return fmt.Errorf("stub save failure")
	}
	return nil
}

func newTestRouter(store *tree.Store, repo *stubRepository) *chi.Mux {
	personHandler := &PersonHandler{Store: store, Repo: repo}
	treeHandler := &TreeHandler{Store: store, Repo: repo}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/people", func(r chi.Router) {
			r.Post("/", personHandler.CreatePerson)
			r.Get("/", personHandler.ListPeople)
			r.Route("/{person_id}", func(r chi.Router) {
				r.Get("/", personHandler.GetPerson)
				r.Put("/", personHandler.UpdatePerson)
				r.Delete("/", personHandler.DeletePerson)
				r.Route("/relationships", func(r chi.Router) {
					r.Post("/", personHandler.AddRelationship)
					r.Delete("/{type}/{related_id}", personHandler.RemoveRelationship)
				})
			})
		})
		r.Get("/layout", treeHandler.GetLayout)
		r.Route("/tree", func(r chi.Router) {
			r.Get("/export", treeHandler.ExportTree)
			r.Post("/import", treeHandler.ImportTree)
		})
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodePerson(t *testing.T, rec *httptest.ResponseRecorder) models.Person {
	t.Helper()
	var p models.Person
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestCreateAndGetPerson(t *testing.T) {
	router := newTestRouter(tree.NewStore(), &stubRepository{})

	rec := doJSON(t, router, http.MethodPost, "/api/people", map[string]string{
		"first_name": "Alice",
		"last_name":  "Smith",
		"birth_date": "1950-03-14",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodePerson(t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Alice Smith", created.DisplayName)

	rec = doJSON(t, router, http.MethodGet, "/api/people/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decodePerson(t, rec).ID)
}

func TestCreatePersonRejectsBadLifespan(t *testing.T) {
	router := newTestRouter(tree.NewStore(), &stubRepository{})

	rec := doJSON(t, router, http.MethodPost, "/api/people", map[string]string{
		"first_name": "Ghost",
		"birth_date": "2000-01-01",
		"death_date": "1990-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPersonNotFound(t *testing.T) {
	router := newTestRouter(tree.NewStore(), &stubRepository{})
	rec := doJSON(t, router, http.MethodGet, "/api/people/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdatePersonPartial(t *testing.T) {
	store := tree.NewStore()
	router := newTestRouter(store, &stubRepository{})
	p := store.AddPerson(models.Person{FirstName: "Ada", LastName: "Lovelace"})

	rec := doJSON(t, router, http.MethodPut, "/api/people/"+p.ID, map[string]string{
		"notes": "mathematician",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodePerson(t, rec)
	assert.Equal(t, "mathematician", updated.Notes)
	assert.Equal(t, "Ada", updated.FirstName, "unspecified fields survive a partial update")
}

func TestUpdatePersonValidatesResultingLifespan(t *testing.T) {
	store := tree.NewStore()
	router := newTestRouter(store, &stubRepository{})
	p := store.AddPerson(models.Person{FirstName: "Ada", BirthDate: "2000-01-01"})

	// a death date before the stored birth date must be rejected
	rec := doJSON(t, router, http.MethodPut, "/api/people/"+p.ID, map[string]string{
		"death_date": "1990-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRelationshipFlow(t *testing.T) {
	store := tree.NewStore()
	router := newTestRouter(store, &stubRepository{})
	alice := store.AddPerson(models.Person{FirstName: "Alice"})
	bob := store.AddPerson(models.Person{FirstName: "Bob"})

	rec := doJSON(t, router, http.MethodPost, "/api/people/"+alice.ID+"/relationships", map[string]string{
		"related_id": bob.ID,
		"type":       "child",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	gotAlice, _ := store.GetPerson(alice.ID)
	gotBob, _ := store.GetPerson(bob.ID)
	assert.True(t, gotAlice.ChildIDs.Contains(bob.ID))
	assert.True(t, gotBob.ParentIDs.Contains(alice.ID))

	rec = doJSON(t, router, http.MethodDelete, "/api/people/"+alice.ID+"/relationships/child/"+bob.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	gotAlice, _ = store.GetPerson(alice.ID)
	assert.Empty(t, gotAlice.ChildIDs)
}

func TestAddRelationshipRejectsSelfAndUnknownType(t *testing.T) {
	store := tree.NewStore()
	router := newTestRouter(store, &stubRepository{})
	alice := store.AddPerson(models.Person{FirstName: "Alice"})

	rec := doJSON(t, router, http.MethodPost, "/api/people/"+alice.ID+"/relationships", map[string]string{
		"related_id": alice.ID,
		"type":       "partner",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/people/"+alice.ID+"/relationships", map[string]string{
		"related_id": alice.ID,
		"type":       "sibling",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeletePersonCascadesThroughAPI(t *testing.T) {
	store := tree.NewStore()
	router := newTestRouter(store, &stubRepository{})
	alice := store.AddPerson(models.Person{FirstName: "Alice"})
	bob := store.AddPerson(models.Person{FirstName: "Bob"})
	require.True(t, store.AddRelationship(alice.ID, bob.ID, models.RelationshipChild))

	rec := doJSON(t, router, http.MethodDelete, "/api/people/"+alice.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	gotBob, ok := store.GetPerson(bob.ID)
	require.True(t, ok)
	assert.Empty(t, gotBob.ParentIDs)
}

func TestLayoutEndpoint(t *testing.T) {
	store := tree.NewStore()
	router := newTestRouter(store, &stubRepository{})
	alice := store.AddPerson(models.Person{FirstName: "Alice"})
	bob := store.AddPerson(models.Person{FirstName: "Bob"})
	require.True(t, store.AddRelationship(alice.ID, bob.ID, models.RelationshipChild))

	rec := doJSON(t, router, http.MethodGet, "/api/layout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var l layout.Layout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &l))
	assert.Len(t, l.Nodes, 2)
	require.Len(t, l.Edges, 1)
	assert.Equal(t, layout.EdgeKindDirected, l.Edges[0].Kind)
}

func TestExportImportEndpoints(t *testing.T) {
	store := tree.NewStore()
	router := newTestRouter(store, &stubRepository{})
	store.AddPerson(models.Person{FirstName: "Alice"})
	store.AddPerson(models.Person{FirstName: "Bob"})

	rec := doJSON(t, router, http.MethodGet, "/api/tree/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	exported := rec.Body.Bytes()

	// wipe and restore via import
	freshStore := tree.NewStore()
	freshRouter := newTestRouter(freshStore, &stubRepository{})
	req := httptest.NewRequest(http.MethodPost, "/api/tree/import", bytes.NewReader(exported))
	importRec := httptest.NewRecorder()
	freshRouter.ServeHTTP(importRec, req)
	require.Equal(t, http.StatusOK, importRec.Code, importRec.Body.String())
	assert.Equal(t, 2, freshStore.Len())

	rec = doJSON(t, freshRouter, http.MethodPost, "/api/tree/import", map[string]string{"version": "1.0.0"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "a document without a people list is rejected")
}

func TestPersistenceFailureSurfacesAs500(t *testing.T) {
	store := tree.NewStore()
	router := newTestRouter(store, &stubRepository{failSaves: true})

	rec := doJSON(t, router, http.MethodPost, "/api/people", map[string]string{"first_name": "Alice"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// the in-memory store keeps the person even when persistence fails
	assert.Equal(t, 1, store.Len())
}
