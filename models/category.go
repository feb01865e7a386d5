package models

// Category represents a plant category.
// Categories are addressed by name in every route, so the name carries a
// unique index to keep routing unambiguous.
type Category struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

func (c *Category) TableName() string {
	return "categories"
}
