package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"

	"github.com/facette/natsort"
	"github.com/go-chi/chi/v5"

	"github.com/jasepellerin/family-tree/media"
	"github.com/jasepellerin/family-tree/models"
	"github.com/jasepellerin/family-tree/repository"
	"github.com/jasepellerin/family-tree/tree"
	"github.com/jasepellerin/family-tree/utils"
)

type PersonHandler struct {
	Store *tree.Store
	Repo  repository.PersonRepositoryInterface
	Media media.Store
}

type personRequest struct {
	Name          *string `json:"name"`
	FirstName     *string `json:"first_name"`
	MiddleName    *string `json:"middle_name"`
	LastName      *string `json:"last_name"`
	MaidenName    *string `json:"maiden_name"`
	PreferredName *string `json:"preferred_name"`
	BirthDate     *string `json:"birth_date"`
	DeathDate     *string `json:"death_date"`
	Gender        *string `json:"gender"`
	Notes         *string `json:"notes"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (ph *PersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req personRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateLifespan(deref(req.BirthDate), deref(req.DeathDate)); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_dates", err.Error())
		return
	}

	person := ph.Store.AddPerson(models.Person{
		Name:          deref(req.Name),
		FirstName:     deref(req.FirstName),
		MiddleName:    deref(req.MiddleName),
		LastName:      deref(req.LastName),
		MaidenName:    deref(req.MaidenName),
		PreferredName: deref(req.PreferredName),
		BirthDate:     deref(req.BirthDate),
		DeathDate:     deref(req.DeathDate),
		Gender:        deref(req.Gender),
		Notes:         deref(req.Notes),
	})

	if err := ph.Repo.Create(&person); err != nil {
		log.Printf("Error persisting new person %s: %v", person.ID, err)
		WriteAPIError(w, http.StatusInternalServerError, "persistence_failed", "Person was created in memory but could not be saved")
		return
	}

	writeJSON(w, http.StatusCreated, person)
}

func (ph *PersonHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people := ph.Store.Snapshot()

	if r.URL.Query().Get("sort") == "name" {
		sort.SliceStable(people, func(i, j int) bool {
			return natsort.Compare(people[i].DisplayName, people[j].DisplayName)
		})
	}

	writeJSON(w, http.StatusOK, people)
}

func (ph *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "person_id")
	person, ok := ph.Store.GetPerson(personID)
	if !ok {
		WritePersonNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, person)
}

func (ph *PersonHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "person_id")

	current, ok := ph.Store.GetPerson(personID)
	if !ok {
		WritePersonNotFound(w)
		return
	}

	var req personRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}

	// validate the dates the person would end up with, so a partial update
	// can never produce an inconsistent lifespan
	birth := current.BirthDate
	if req.BirthDate != nil {
		birth = *req.BirthDate
	}
	death := current.DeathDate
	if req.DeathDate != nil {
		death = *req.DeathDate
	}
	if err := utils.ValidateLifespan(birth, death); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_dates", err.Error())
		return
	}

	updated, ok := ph.Store.UpdatePerson(personID, tree.PersonUpdate{
		Name:          req.Name,
		FirstName:     req.FirstName,
		MiddleName:    req.MiddleName,
		LastName:      req.LastName,
		MaidenName:    req.MaidenName,
		PreferredName: req.PreferredName,
		BirthDate:     req.BirthDate,
		DeathDate:     req.DeathDate,
		Gender:        req.Gender,
		Notes:         req.Notes,
	})
	if !ok {
		WritePersonNotFound(w)
		return
	}

	if err := ph.Repo.Update(&updated); err != nil {
		log.Printf("Error persisting update for person %s: %v", personID, err)
		WriteAPIError(w, http.StatusInternalServerError, "persistence_failed", "Person was updated in memory but could not be saved")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (ph *PersonHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "person_id")

	person, ok := ph.Store.GetPerson(personID)
	if !ok {
		WritePersonNotFound(w)
		return
	}

	if !ph.Store.DeletePerson(personID) {
		WritePersonNotFound(w)
		return
	}

	// the cascade touches every remaining person, persist the whole snapshot
	if err := ph.Repo.ReplaceAll(ph.Store.Snapshot()); err != nil {
		log.Printf("Error persisting delete of person %s: %v", personID, err)
		WriteAPIError(w, http.StatusInternalServerError, "persistence_failed", "Person was deleted in memory but the change could not be saved")
		return
	}

	if ph.Media != nil {
		if person.PhotoPath != nil {
			_ = ph.Media.Delete(*person.PhotoPath)
		}
		if person.ThumbnailPath != nil {
			_ = ph.Media.Delete(*person.ThumbnailPath)
		}
	}

	writeJSON(w, http.StatusNoContent, nil)
}

type relationshipRequest struct {
	RelatedID string `json:"related_id"`
	Type      string `json:"type"`
}

func (ph *PersonHandler) AddRelationship(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "person_id")

	var req relationshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}

	relType := models.RelationshipType(req.Type)
	if !relType.IsValid() {
		WriteAPIError(w, http.StatusBadRequest, "invalid_relationship_type", "Relationship type must be one of parent, child, partner, spouse")
		return
	}
	if req.RelatedID == personID {
		WriteAPIError(w, http.StatusBadRequest, "self_relationship", "A person cannot be related to themself")
		return
	}

	if _, ok := ph.Store.GetPerson(personID); !ok {
		WritePersonNotFound(w)
		return
	}
	if _, ok := ph.Store.GetPerson(req.RelatedID); !ok {
		WriteAPIError(w, http.StatusNotFound, "person_not_found", "Related person not found")
		return
	}

	if !ph.Store.AddRelationship(personID, req.RelatedID, relType) {
		WriteAPIError(w, http.StatusBadRequest, "invalid_relationship", "Relationship could not be added")
		return
	}

	ph.persistPair(w, personID, req.RelatedID)
}

func (ph *PersonHandler) RemoveRelationship(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "person_id")
	relatedID := chi.URLParam(r, "related_id")

	relType := models.RelationshipType(chi.URLParam(r, "type"))
	if !relType.IsValid() {
		WriteAPIError(w, http.StatusBadRequest, "invalid_relationship_type", "Relationship type must be one of parent, child, partner, spouse")
		return
	}

	if _, ok := ph.Store.GetPerson(personID); !ok {
		WritePersonNotFound(w)
		return
	}
	if _, ok := ph.Store.GetPerson(relatedID); !ok {
		WriteAPIError(w, http.StatusNotFound, "person_not_found", "Related person not found")
		return
	}

	if !ph.Store.RemoveRelationship(personID, relatedID, relType) {
		WriteAPIError(w, http.StatusBadRequest, "invalid_relationship", "Relationship could not be removed")
		return
	}

	ph.persistPair(w, personID, relatedID)
}

// persistPair saves both endpoints of a relationship mutation and responds
// with the updated primary person.
func (ph *PersonHandler) persistPair(w http.ResponseWriter, personID, relatedID string) {
	person, _ := ph.Store.GetPerson(personID)
	related, _ := ph.Store.GetPerson(relatedID)
	if err := ph.Repo.UpdateMany([]models.Person{person, related}); err != nil {
		log.Printf("Error persisting relationship between %s and %s: %v", personID, relatedID, err)
		WriteAPIError(w, http.StatusInternalServerError, "persistence_failed", "Relationship was applied in memory but could not be saved")
		return
	}
	writeJSON(w, http.StatusOK, person)
}
