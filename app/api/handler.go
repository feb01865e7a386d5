// Package api serves the JSON mirror of the browsing routes. Unlike the
// HTML pages, lookup misses answer with a 404 status instead of a redirect.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mbelos/plantcatalog/catalog"
	"github.com/mbelos/plantcatalog/log"
	"github.com/mbelos/plantcatalog/models"
)

type PlantResponse struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	BotanicalName string `json:"botanical_name"`
	Description   string `json:"description"`
	Image         string `json:"image"`
	Category      string `json:"category"`
}

type CategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// CatalogProvider is the slice of the catalog service the API consumes.
type CatalogProvider interface {
	Categories() ([]models.Category, error)
	AllPlants() ([]models.Plant, error)
	PlantsInCategory(categoryName string) (models.Category, []models.Plant, error)
	Plant(categoryName, plantName string) (models.Plant, models.User, error)
}

type Handler struct {
	catalog CatalogProvider
	log     log.Logger
}

func NewHandler(c CatalogProvider, logger log.Logger) *Handler {
	return &Handler{catalog: c, log: logger}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /catalog/JSON/{$}", h.allPlants)
	mux.HandleFunc("GET /catalog/categories/JSON/{$}", h.allCategories)
	mux.HandleFunc("GET /catalog/{category}/JSON/{$}", h.categoryPlants)
	mux.HandleFunc("GET /catalog/{category}/{plant}/JSON/{$}", h.plant)
}

func (h *Handler) allPlants(w http.ResponseWriter, r *http.Request) {
	plants, err := h.catalog.AllPlants()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get plants")
		return
	}
	h.writeJSON(w, map[string][]PlantResponse{"plants": mapPlants(plants)})
}

func (h *Handler) allCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get categories")
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		response[i] = CategoryResponse{ID: c.ID, Name: c.Name}
	}
	h.writeJSON(w, map[string][]CategoryResponse{"categories": response})
}

func (h *Handler) categoryPlants(w http.ResponseWriter, r *http.Request) {
	_, plants, err := h.catalog.PlantsInCategory(r.PathValue("category"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get plants")
		return
	}
	h.writeJSON(w, map[string][]PlantResponse{"plants": mapPlants(plants)})
}

func (h *Handler) plant(w http.ResponseWriter, r *http.Request) {
	plant, _, err := h.catalog.Plant(r.PathValue("category"), r.PathValue("plant"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "plant not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get plant")
		return
	}
	h.writeJSON(w, map[string]PlantResponse{"plant": mapPlant(plant)})
}

func mapPlant(p models.Plant) PlantResponse {
	return PlantResponse{
		ID:            p.ID,
		Name:          p.Name,
		BotanicalName: p.BotanicalName,
		Description:   p.Description,
		Image:         p.Image,
		Category:      p.Category.Name,
	}
}

func mapPlants(plants []models.Plant) []PlantResponse {
	response := make([]PlantResponse, len(plants))
	for i, p := range plants {
		response[i] = mapPlant(p)
	}
	return response
}

// writeJSON can only log an encode failure: by the time Encode errors the
// 200 header and part of the body are already on the wire.
func (h *Handler) writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Errorf("encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
