package models

// Plant represents a plant item in the catalog.
// The name is unique across the whole catalog, not just within its category;
// the unique index backs up the application-level check so that two
// concurrent creates cannot both commit the same name. Deleting a category
// cascades to its plants.
type Plant struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"uniqueIndex;not null"`
	BotanicalName string
	Description   string
	Image         string
	CategoryID    uint     `gorm:"not null"`
	Category      Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	UserID        uint     `gorm:"not null"`
	User          User     `gorm:"foreignKey:UserID"`
}

func (p *Plant) TableName() string {
	return "plants"
}
