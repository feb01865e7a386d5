package models

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrPlantNotFound is returned when a plant is not found.
var ErrPlantNotFound = errors.New("plant not found")

type PlantsRepository struct {
	db *gorm.DB
}

func NewPlantsRepository(db *gorm.DB) *PlantsRepository {
	return &PlantsRepository{
		db: db,
	}
}

func (r *PlantsRepository) GetAll() ([]Plant, error) {
	var plants []Plant
	if err := r.db.
		Preload("Category").
		Find(&plants).Error; err != nil {
		return nil, err
	}
	return plants, nil
}

// GetRecent returns the most recently created plants, newest first.
func (r *PlantsRepository) GetRecent(limit int) ([]Plant, error) {
	var plants []Plant
	if err := r.db.
		Preload("Category").
		Order("id DESC").
		Limit(limit).
		Find(&plants).Error; err != nil {
		return nil, err
	}
	return plants, nil
}

func (r *PlantsRepository) GetByCategory(categoryID uint) ([]Plant, error) {
	var plants []Plant
	if err := r.db.
		Preload("Category").
		Where("category_id = ?", categoryID).
		Find(&plants).Error; err != nil {
		return nil, err
	}
	return plants, nil
}

func (r *PlantsRepository) GetByName(name string) (*Plant, error) {
	var plant Plant
	if err := r.db.
		Preload("Category").
		Where("name = ?", name).
		First(&plant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlantNotFound
		}
		return nil, err
	}
	return &plant, nil
}

func (r *PlantsRepository) GetByNameInCategory(name string, categoryID uint) (*Plant, error) {
	var plant Plant
	if err := r.db.
		Preload("Category").
		Where("name = ? AND category_id = ?", name, categoryID).
		First(&plant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlantNotFound
		}
		return nil, err
	}
	return &plant, nil
}

// ExistsByName reports whether any plant other than excludeID carries the
// given name. Pass excludeID 0 when creating.
func (r *PlantsRepository) ExistsByName(name string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&Plant{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create and Save omit associations: plants reference categories and users
// by id only, they never write through to those rows.
func (r *PlantsRepository) Create(plant *Plant) error {
	return r.db.Omit(clause.Associations).Create(plant).Error
}

func (r *PlantsRepository) Save(plant *Plant) error {
	return r.db.Omit(clause.Associations).Save(plant).Error
}

func (r *PlantsRepository) Delete(plant *Plant) error {
	return r.db.Delete(plant).Error
}
