// Package catalog implements the plant catalog operations: anonymous reads,
// and owner-gated create, edit and delete over plant items.
package catalog

import (
	stderrors "errors"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/mbelos/plantcatalog/errors"
	"github.com/mbelos/plantcatalog/models"
)

var (
	// ErrNotFound covers both unknown categories and unknown plants.
	ErrNotFound = errors.New("not found in catalog", errors.NotFound())
	// ErrDuplicateName rejects a plant name already taken anywhere in the
	// catalog, regardless of category.
	ErrDuplicateName = errors.New("plant name already exists", errors.Conflict())
	// ErrForbidden rejects a mutation by anyone but the plant's owner.
	ErrForbidden = errors.New("user is not the owner", errors.Forbidden())
	// ErrNameRequired rejects a create with an empty plant name.
	ErrNameRequired = errors.New("plant name is required", errors.BadRequest())
)

// NewPlant carries the fields for creating a plant. Category is the category
// name; it must already exist.
type NewPlant struct {
	Name          string
	BotanicalName string
	Description   string
	Image         string
	Category      string
}

// PlantUpdate is a partial update. A nil field means "leave it alone"; a
// present field overwrites, with the caveat that the name can never be set to
// empty. The HTTP forms map empty inputs to nil, so through the website an
// empty field means "no change", same as the original app.
type PlantUpdate struct {
	Name          *string
	BotanicalName *string
	Description   *string
	Image         *string
	Category      *string
}

type Service struct {
	users      *models.UsersRepository
	categories *models.CategoriesRepository
	plants     *models.PlantsRepository

	// sanitizer strips markup from every free-text field before storage.
	sanitizer *bluemonday.Policy
}

func NewService(users *models.UsersRepository, categories *models.CategoriesRepository, plants *models.PlantsRepository) *Service {
	return &Service{
		users:      users,
		categories: categories,
		plants:     plants,
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

// Categories returns all plant categories.
func (s *Service) Categories() ([]models.Category, error) {
	return s.categories.GetAll()
}

// Recent returns the most recently created plants, newest first, capped at
// limit. Non-positive limits fall back to 6, the front-page default.
func (s *Service) Recent(limit int) ([]models.Plant, error) {
	if limit <= 0 {
		limit = 6
	}
	return s.plants.GetRecent(limit)
}

// AllPlants returns every plant in the catalog with its category.
func (s *Service) AllPlants() ([]models.Plant, error) {
	return s.plants.GetAll()
}

// PlantsInCategory returns the named category and its plants.
func (s *Service) PlantsInCategory(categoryName string) (models.Category, []models.Plant, error) {
	category, err := s.categories.GetByName(categoryName)
	if err != nil {
		if stderrors.Is(err, models.ErrCategoryNotFound) {
			return models.Category{}, nil, ErrNotFound
		}
		return models.Category{}, nil, err
	}

	plants, err := s.plants.GetByCategory(category.ID)
	if err != nil {
		return models.Category{}, nil, err
	}
	return *category, plants, nil
}

// Plant returns the named plant scoped to the named category, along with its
// owning user.
func (s *Service) Plant(categoryName, plantName string) (models.Plant, models.User, error) {
	category, err := s.categories.GetByName(categoryName)
	if err != nil {
		if stderrors.Is(err, models.ErrCategoryNotFound) {
			return models.Plant{}, models.User{}, ErrNotFound
		}
		return models.Plant{}, models.User{}, err
	}

	plant, err := s.plants.GetByNameInCategory(plantName, category.ID)
	if err != nil {
		if stderrors.Is(err, models.ErrPlantNotFound) {
			return models.Plant{}, models.User{}, ErrNotFound
		}
		return models.Plant{}, models.User{}, err
	}

	owner, err := s.users.GetByID(plant.UserID)
	if err != nil {
		return models.Plant{}, models.User{}, err
	}
	return *plant, *owner, nil
}

// Create inserts a new plant owned by ownerID under the named category.
func (s *Service) Create(in NewPlant, ownerID uint) (models.Plant, error) {
	name := s.sanitizer.Sanitize(in.Name)
	if name == "" {
		return models.Plant{}, ErrNameRequired
	}

	taken, err := s.plants.ExistsByName(name, 0)
	if err != nil {
		return models.Plant{}, err
	}
	if taken {
		return models.Plant{}, ErrDuplicateName
	}

	category, err := s.categories.GetByName(in.Category)
	if err != nil {
		if stderrors.Is(err, models.ErrCategoryNotFound) {
			return models.Plant{}, ErrNotFound
		}
		return models.Plant{}, err
	}

	plant := models.Plant{
		Name:          name,
		BotanicalName: s.sanitizer.Sanitize(in.BotanicalName),
		Description:   s.sanitizer.Sanitize(in.Description),
		Image:         s.sanitizer.Sanitize(in.Image),
		CategoryID:    category.ID,
		UserID:        ownerID,
	}
	if err := s.plants.Create(&plant); err != nil {
		// The unique index closes the window between the check above and
		// this insert.
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Plant{}, ErrDuplicateName
		}
		return models.Plant{}, err
	}
	plant.Category = *category
	return plant, nil
}

// Update applies a partial update to the named plant. Only the owner may
// update; a rename collides with any other plant's name.
func (s *Service) Update(plantName string, upd PlantUpdate, requesterID uint) (models.Plant, error) {
	plant, err := s.plants.GetByName(plantName)
	if err != nil {
		if stderrors.Is(err, models.ErrPlantNotFound) {
			return models.Plant{}, ErrNotFound
		}
		return models.Plant{}, err
	}

	if !CanModify(requesterID, plant.UserID) {
		return *plant, ErrForbidden
	}

	if upd.Name != nil {
		name := s.sanitizer.Sanitize(*upd.Name)
		if name == "" {
			return *plant, ErrNameRequired
		}
		taken, err := s.plants.ExistsByName(name, plant.ID)
		if err != nil {
			return models.Plant{}, err
		}
		if taken {
			return *plant, ErrDuplicateName
		}
		plant.Name = name
	}
	if upd.BotanicalName != nil {
		plant.BotanicalName = s.sanitizer.Sanitize(*upd.BotanicalName)
	}
	if upd.Description != nil {
		plant.Description = s.sanitizer.Sanitize(*upd.Description)
	}
	if upd.Image != nil {
		plant.Image = s.sanitizer.Sanitize(*upd.Image)
	}
	if upd.Category != nil {
		category, err := s.categories.GetByName(*upd.Category)
		if err != nil {
			if stderrors.Is(err, models.ErrCategoryNotFound) {
				return *plant, ErrNotFound
			}
			return models.Plant{}, err
		}
		plant.CategoryID = category.ID
		plant.Category = *category
	}

	if err := s.plants.Save(plant); err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return *plant, ErrDuplicateName
		}
		return models.Plant{}, err
	}
	return *plant, nil
}

// Delete removes the named plant permanently. Only the owner may delete.
func (s *Service) Delete(plantName string, requesterID uint) error {
	plant, err := s.plants.GetByName(plantName)
	if err != nil {
		if stderrors.Is(err, models.ErrPlantNotFound) {
			return ErrNotFound
		}
		return err
	}

	if !CanModify(requesterID, plant.UserID) {
		return ErrForbidden
	}

	return s.plants.Delete(plant)
}

// PlantByName returns the named plant regardless of category. The edit and
// delete pages address plants by name alone.
func (s *Service) PlantByName(plantName string) (models.Plant, error) {
	plant, err := s.plants.GetByName(plantName)
	if err != nil {
		if stderrors.Is(err, models.ErrPlantNotFound) {
			return models.Plant{}, ErrNotFound
		}
		return models.Plant{}, err
	}
	return *plant, nil
}

// ResolveUser looks up the user for a verified identity by email, creating
// one on first login. Repeated logins with the same email always resolve to
// the same user row.
func (s *Service) ResolveUser(name, email, picture string) (models.User, error) {
	user, err := s.users.GetByEmail(email)
	if err == nil {
		return *user, nil
	}
	if !stderrors.Is(err, models.ErrUserNotFound) {
		return models.User{}, err
	}

	created := models.User{Name: name, Email: email, Picture: picture}
	if err := s.users.Create(&created); err != nil {
		// Two first logins racing on the same email: the unique index lets
		// one through, the other reads the winner's row.
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			user, err := s.users.GetByEmail(email)
			if err != nil {
				return models.User{}, err
			}
			return *user, nil
		}
		return models.User{}, err
	}
	return created, nil
}

// CanModify is the ownership check applied before every mutation: the
// requester must be a resolved user equal to the plant's owner. It is
// exported so the edit and delete pages can refuse to render forms the
// requester could never submit.
func CanModify(requesterID, ownerID uint) bool {
	return requesterID != 0 && requesterID == ownerID
}
