package tree

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jasepellerin/family-tree/models"
)

// Store owns the collection of person records and enforces the
// relationship invariants on every mutation: relationship symmetry
// (forward and reciprocal sets always agree), no self-relationships, and
// cascade cleanup on delete. Insertion order is preserved so snapshots are
// stable and deterministic.
//
// The store is safe for concurrent use; each operation is a single atomic
// state transition, so an observer never sees only one side of a
// relationship applied.
type Store struct {
	mu        sync.RWMutex
	people    []*models.Person
	index     map[string]*models.Person
	listeners []func()
}

// PersonUpdate describes a partial update; nil fields are left untouched.
// Relationship sets are not updatable here — they change only through
// AddRelationship, RemoveRelationship and DeletePerson.
type PersonUpdate struct {
	Name          *string
	FirstName     *string
	MiddleName    *string
	LastName      *string
	MaidenName    *string
	PreferredName *string
	BirthDate     *string
	DeathDate     *string
	Gender        *string
	Notes         *string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{index: make(map[string]*models.Person)}
}

// Load replaces the collection with previously persisted records without
// firing change notifications. Nil relationship sets are backfilled and
// display names re-derived.
func (s *Store) Load(people []models.Person) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(people)
}

// Replace swaps in a whole new collection (the import path) and notifies
// listeners.
func (s *Store) Replace(people []models.Person) {
	s.mu.Lock()
	s.reset(people)
	s.mu.Unlock()
	s.notify()
}

// reset installs the given records; caller must hold the write lock.
func (s *Store) reset(people []models.Person) {
	s.people = make([]*models.Person, 0, len(people))
	s.index = make(map[string]*models.Person, len(people))
	for i := range people {
		p := people[i].Clone()
		p.NormalizeRelationshipSets()
		p.DisplayName = models.DeriveDisplayName(&p)
		s.people = append(s.people, &p)
		s.index[p.ID] = &p
	}
}

// AddPerson creates a new person with a fresh unique id and empty
// relationship sets, appends it to the collection and returns the created
// record.
func (s *Store) AddPerson(data models.Person) models.Person {
	s.mu.Lock()
	p := data.Clone()
	p.ID = uuid.NewString()
	p.NormalizeRelationshipSets()
	// relationship sets are never seeded at creation; links are added
	// through AddRelationship so symmetry holds
	p.ParentIDs = models.IDList{}
	p.ChildIDs = models.IDList{}
	p.PartnerIDs = models.IDList{}
	p.SpouseIDs = models.IDList{}
	p.DisplayName = models.DeriveDisplayName(&p)
	now := time.Now().Unix()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.people = append(s.people, &p)
	s.index[p.ID] = &p
	created := p.Clone()
	s.mu.Unlock()

	s.notify()
	return created
}

// UpdatePerson merges the given fields into the matching person, leaving
// unset fields untouched. The second return value is false when the id is
// unknown; the store state is then unchanged.
func (s *Store) UpdatePerson(id string, upd PersonUpdate) (models.Person, bool) {
	s.mu.Lock()
	p, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return models.Person{}, false
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&p.Name, upd.Name)
	apply(&p.FirstName, upd.FirstName)
	apply(&p.MiddleName, upd.MiddleName)
	apply(&p.LastName, upd.LastName)
	apply(&p.MaidenName, upd.MaidenName)
	apply(&p.PreferredName, upd.PreferredName)
	apply(&p.BirthDate, upd.BirthDate)
	apply(&p.DeathDate, upd.DeathDate)
	apply(&p.Gender, upd.Gender)
	apply(&p.Notes, upd.Notes)

	p.DisplayName = models.DeriveDisplayName(p)
	p.UpdatedAt = time.Now().Unix()
	updated := p.Clone()
	s.mu.Unlock()

	s.notify()
	return updated, true
}

// SetPhoto records the photo and thumbnail asset paths for a person (nil
// clears them). Returns false when the id is unknown.
func (s *Store) SetPhoto(id string, photoPath, thumbnailPath *string) (models.Person, bool) {
	s.mu.Lock()
	p, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return models.Person{}, false
	}
	p.PhotoPath = photoPath
	p.ThumbnailPath = thumbnailPath
	p.UpdatedAt = time.Now().Unix()
	updated := p.Clone()
	s.mu.Unlock()

	s.notify()
	return updated, true
}

// DeletePerson removes the person and scrubs its id from every remaining
// person's relationship sets. Deleting an absent id is a no-op and returns
// false.
func (s *Store) DeletePerson(id string) bool {
	s.mu.Lock()
	if _, ok := s.index[id]; !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.index, id)
	for i, p := range s.people {
		if p.ID == id {
			s.people = append(s.people[:i], s.people[i+1:]...)
			break
		}
	}
	now := time.Now().Unix()
	for _, p := range s.people {
		changed := p.ParentIDs.Remove(id)
		changed = p.ChildIDs.Remove(id) || changed
		changed = p.PartnerIDs.Remove(id) || changed
		changed = p.SpouseIDs.Remove(id) || changed
		if changed {
			p.UpdatedAt = now
		}
	}
	s.mu.Unlock()

	s.notify()
	return true
}

// GetPerson returns a copy of the person, or false when the id is unknown.
func (s *Store) GetPerson(id string) (models.Person, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.index[id]
	if !ok {
		return models.Person{}, false
	}
	return p.Clone(), true
}

// AddRelationship links personID to relatedID under the given type and
// simultaneously maintains the reciprocal set on the other endpoint. Both
// sides are set-inserts, so repeating the call is a no-op. Unknown ids,
// invalid types and self-relationships are rejected (returns false, state
// unchanged).
func (s *Store) AddRelationship(personID, relatedID string, t models.RelationshipType) bool {
	if !t.IsValid() || personID == relatedID {
		return false
	}

	s.mu.Lock()
	person, ok := s.index[personID]
	related, ok2 := s.index[relatedID]
	if !ok || !ok2 {
		s.mu.Unlock()
		return false
	}

	forward := person.RelationshipSet(t)
	reciprocal := related.RelationshipSet(t.Reciprocal())
	changed := forward.Add(relatedID)
	changed = reciprocal.Add(personID) || changed
	if changed {
		now := time.Now().Unix()
		person.UpdatedAt = now
		related.UpdatedAt = now
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return true
}

// RemoveRelationship unlinks the pair under the given type, removing both
// the forward and the reciprocal entry. Removing an absent link is a
// no-op.
func (s *Store) RemoveRelationship(personID, relatedID string, t models.RelationshipType) bool {
	if !t.IsValid() {
		return false
	}

	s.mu.Lock()
	person, ok := s.index[personID]
	related, ok2 := s.index[relatedID]
	if !ok || !ok2 {
		s.mu.Unlock()
		return false
	}

	changed := person.RelationshipSet(t).Remove(relatedID)
	changed = related.RelationshipSet(t.Reciprocal()).Remove(personID) || changed
	if changed {
		now := time.Now().Unix()
		person.UpdatedAt = now
		related.UpdatedAt = now
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return true
}

// Snapshot returns a deep copy of the whole collection in insertion order.
// This is the sole input to the layout engine and to persistence.
func (s *Store) Snapshot() []models.Person {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Person, 0, len(s.people))
	for _, p := range s.people {
		out = append(out, p.Clone())
	}
	return out
}

// Len returns the number of people in the collection.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.people)
}

// OnChange registers a listener invoked after every successful mutation.
// Listeners run outside the store lock and must not mutate the store
// re-entrantly from the callback.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}
