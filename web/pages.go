package web

import "github.com/mbelos/plantcatalog/models"

// Page carries the fields every template needs: the session's display state
// and the queued flash notices.
type Page struct {
	LoggedIn bool
	UserName string
	Flashes  []string
}

type CategoriesPage struct {
	Page
	Categories []models.Category
	Recent     []models.Plant
}

type CategoryPage struct {
	Page
	Category models.Category
	Plants   []models.Plant
}

type PlantPage struct {
	Page
	Plant   models.Plant
	Creator models.User
	Owned   bool
}

type NewPlantPage struct {
	Page
	Categories []models.Category
}

type EditPlantPage struct {
	Page
	Categories []models.Category
	Plant      models.Plant
}

type DeletePlantPage struct {
	Page
	Plant models.Plant
}

type LoginPage struct {
	Page
	State    string
	ClientID string
}
