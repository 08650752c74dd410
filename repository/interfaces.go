package repository

import (
	"github.com/jasepellerin/family-tree/models"
)

// PersonRepositoryInterface defines the methods for person persistence
type PersonRepositoryInterface interface {
	LoadAll() ([]models.Person, error)
	Create(person *models.Person) error
	Update(person *models.Person) error
	UpdateMany(people []models.Person) error
	UpdatePhotoPaths(id string, photoPath, thumbnailPath *string) error
	ReplaceAll(people []models.Person) error
}
