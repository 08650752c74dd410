package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jasepellerin/family-tree/models"
)

// PersonRepository persists person records to the database. The in-memory
// tree store stays authoritative; a failed save never corrupts it.
type PersonRepository struct {
	DB *gorm.DB
}

// NewPersonRepository creates a new instance of PersonRepository
func NewPersonRepository(db *gorm.DB) *PersonRepository {
	return &PersonRepository{DB: db}
}

// LoadAll retrieves the whole collection in stable insertion order
// (created_at, then id as a tiebreaker). Missing relationship sets are
// backfilled to empty before returning.
func (r *PersonRepository) LoadAll() ([]models.Person, error) {
	var people []models.Person
	err := r.DB.Order("created_at ASC, id ASC").Find(&people).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load people: %w", err)
	}
	for i := range people {
		people[i].NormalizeRelationshipSets()
	}
	return people, nil
}

// Create inserts a new person row.
func (r *PersonRepository) Create(person *models.Person) error {
	err := r.DB.Create(person).Error
	if err != nil {
		return fmt.Errorf("failed to create person %s: %w", person.ID, err)
	}
	return nil
}

// Update writes all fields of an existing person row.
func (r *PersonRepository) Update(person *models.Person) error {
	result := r.DB.Save(person)
	if result.Error != nil {
		return fmt.Errorf("failed to update person %s: %w", person.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateMany writes several person rows in one transaction; relationship
// mutations touch two rows and must land together.
func (r *PersonRepository) UpdateMany(people []models.Person) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i := range people {
			result := tx.Save(&people[i])
			if result.Error != nil {
				return fmt.Errorf("failed to update person %s: %w", people[i].ID, result.Error)
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}

// UpdatePhotoPaths sets or clears the photo asset columns for a person.
func (r *PersonRepository) UpdatePhotoPaths(id string, photoPath, thumbnailPath *string) error {
	result := r.DB.Model(&models.Person{}).Where("id = ?", id).Updates(map[string]interface{}{
		"photo_path":     photoPath,
		"thumbnail_path": thumbnailPath,
		"updated_at":     time.Now().Unix(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update photo paths for person %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceAll atomically swaps the persisted collection for the given one.
// Used after cascade deletes and imports, where many rows change at once.
func (r *PersonRepository) ReplaceAll(people []models.Person) error {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM people").Error; err != nil {
			return err
		}
		if len(people) == 0 {
			return nil
		}
		return tx.CreateInBatches(people, 100).Error
	})
	if err != nil {
		return fmt.Errorf("failed to replace people collection: %w", err)
	}
	return nil
}

// IsNotFound reports whether err is the repository's record-not-found
// condition.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
