// Package site serves the server-rendered catalog pages. Lookup misses and
// validation failures recover into a flash notice and a redirect rather than
// an error page; ownership violations redirect to the plant's own page.
package site

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mbelos/plantcatalog/catalog"
	"github.com/mbelos/plantcatalog/log"
	"github.com/mbelos/plantcatalog/models"
	"github.com/mbelos/plantcatalog/session"
	"github.com/mbelos/plantcatalog/web"
)

// CatalogProvider is the slice of the catalog service the pages consume.
type CatalogProvider interface {
	Categories() ([]models.Category, error)
	Recent(limit int) ([]models.Plant, error)
	PlantsInCategory(categoryName string) (models.Category, []models.Plant, error)
	Plant(categoryName, plantName string) (models.Plant, models.User, error)
	PlantByName(plantName string) (models.Plant, error)
	Create(in catalog.NewPlant, ownerID uint) (models.Plant, error)
	Update(plantName string, upd catalog.PlantUpdate, requesterID uint) (models.Plant, error)
	Delete(plantName string, requesterID uint) error
}

type Handler struct {
	catalog  CatalogProvider
	sessions *session.Manager
	views    *web.Views
	log      log.Logger
}

func NewHandler(c CatalogProvider, sessions *session.Manager, views *web.Views, logger log.Logger) *Handler {
	return &Handler{
		catalog:  c,
		sessions: sessions,
		views:    views,
		log:      logger,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.home)
	mux.HandleFunc("GET /catalog/{$}", h.home)
	mux.HandleFunc("GET /catalog/newplant/{$}", h.newPlantForm)
	mux.HandleFunc("POST /catalog/newplant/{$}", h.createPlant)
	mux.HandleFunc("GET /catalog/{category}/{$}", h.category)
	mux.HandleFunc("GET /catalog/{category}/{plant}/{$}", h.plant)
	mux.HandleFunc("GET /catalog/{plant}/edit/{$}", h.editPlantForm)
	mux.HandleFunc("POST /catalog/{plant}/edit/{$}", h.editPlant)
	mux.HandleFunc("GET /catalog/{plant}/delete/{$}", h.deletePlantForm)
	mux.HandleFunc("POST /catalog/{plant}/delete/{$}", h.deletePlant)
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(w, r)

	categories, err := h.catalog.Categories()
	if err != nil {
		h.serverError(w, err)
		return
	}
	recent, err := h.catalog.Recent(6)
	if err != nil {
		h.serverError(w, err)
		return
	}

	h.render(w, "categories", web.CategoriesPage{
		Page:       h.page(sess),
		Categories: categories,
		Recent:     recent,
	})
}

func (h *Handler) category(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(w, r)
	name := r.PathValue("category")

	category, plants, err := h.catalog.PlantsInCategory(name)
	if errors.Is(err, catalog.ErrNotFound) {
		h.flashAndRedirect(w, r, sess, fmt.Sprintf("Category: %s is not in catalog", name), "/catalog/")
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}

	h.render(w, "category", web.CategoryPage{
		Page:     h.page(sess),
		Category: category,
		Plants:   plants,
	})
}

func (h *Handler) plant(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(w, r)
	categoryName := r.PathValue("category")
	plantName := r.PathValue("plant")

	plant, creator, err := h.catalog.Plant(categoryName, plantName)
	if errors.Is(err, catalog.ErrNotFound) {
		h.flashAndRedirect(w, r, sess,
			fmt.Sprintf("Category: %s, Plant: %s is not in catalog", categoryName, plantName), "/catalog/")
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}

	h.render(w, "plant", web.PlantPage{
		Page:    h.page(sess),
		Plant:   plant,
		Creator: creator,
		Owned:   catalog.CanModify(sess.Identity().UserID, plant.UserID),
	})
}

func (h *Handler) newPlantForm(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(w, r)
	if !sess.LoggedIn() {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	categories, err := h.catalog.Categories()
	if err != nil {
		h.serverError(w, err)
		return
	}

	h.render(w, "newplant", web.NewPlantPage{
		Page:       h.page(sess),
		Categories: categories,
	})
}

func (h *Handler) createPlant(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(w, r)
	if !sess.LoggedIn() {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.flashAndRedirect(w, r, sess, "Create new plant failed! Invalid form data.", "/catalog/")
		return
	}

	in := catalog.NewPlant{
		Name:          r.PostFormValue("name"),
		BotanicalName: r.PostFormValue("botanical_name"),
		Description:   r.PostFormValue("description"),
		Image:         r.PostFormValue("image"),
		Category:      r.PostFormValue("category"),
	}

	plant, err := h.catalog.Create(in, sess.Identity().UserID)
	switch {
	case errors.Is(err, catalog.ErrNameRequired):
		h.flashAndRedirect(w, r, sess, "Create new plant failed! You must enter a plant name.", "/catalog/")
	case errors.Is(err, catalog.ErrDuplicateName):
		h.flashAndRedirect(w, r, sess,
			fmt.Sprintf("Create new plant failed! Plant item %s already exists", in.Name), "/catalog/")
	case errors.Is(err, catalog.ErrNotFound):
		h.flashAndRedirect(w, r, sess,
			fmt.Sprintf("Create new plant failed! Category: %s is not in catalog", in.Category), "/catalog/")
	case err != nil:
		h.serverError(w, err)
	default:
		h.flashAndRedirect(w, r, sess,
			fmt.Sprintf("New Plant %s successfully created", plant.Name), plantPath(plant))
	}
}

func (h *Handler) editPlantForm(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(w, r)
	if !sess.LoggedIn() {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	plantName := r.PathValue("plant")

	plant, err := h.catalog.PlantByName(plantName)
	if errors.Is(err, catalog.ErrNotFound) {
		h.flashAndRedirect(w, r, sess, fmt.Sprintf("Edit failed! Plant: %s is not in catalog", plantName), "/catalog/")
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}
	if !catalog.CanModify(sess.Identity().UserID, plant.UserID) {
		h.flashAndRedirect(w, r, sess,
			fmt.Sprintf("Edit permission denied: User is not owner of %s", plantName), plantPath(plant))
		return
	}

	categories, err := h.catalog.Categories()
	if err != nil {
		h.serverError(w, err)
		return
	}

	h.render(w, "editplant", web.EditPlantPage{
		Page:       h.page(sess),
		Categories: categories,
		Plant:      plant,
	})
}

func (h *Handler) editPlant(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(w, r)
	if !sess.LoggedIn() {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	plantName := r.PathValue("plant")

	if err := r.ParseForm(); err != nil {
		h.flashAndRedirect(w, r, sess, "Edit failed! Invalid form data.", "/catalog/")
		return
	}

	// An empty form value means "no change", as in the original site.
	upd := catalog.PlantUpdate{
		Name:          formValue(r, "name"),
		BotanicalName: formValue(r, "botanical_name"),
		Description:   formValue(r, "description"),
		Image:         formValue(r, "image"),
		Category:      formValue(r, "category"),
	}

	plant, err := h.catalog.Update(plantName, upd, sess.Identity().UserID)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		h.flashAndRedirect(w, r, sess, fmt.Sprintf("Edit failed! Plant: %s is not in catalog", plantName), "/catalog/")
	case errors.Is(err, catalog.ErrForbidden):
		h.flashAndRedirect(w, r, sess,
			fmt.Sprintf("Edit permission denied: User is not owner of %s", plantName), plantPath(plant))
	case errors.Is(err, catalog.ErrDuplicateName):
		h.flashAndRedirect(w, r, sess,
			fmt.Sprintf("Edit permission denied: Plant item %s already exists", valueOr(upd.Name)), plantPath(plant))
	case err != nil:
		h.serverError(w, err)
	default:
		h.flashAndRedirect(w, r, sess,
			fmt.Sprintf("Plant %s successfully edited", plant.Name), plantPath(plant))
	}
}

func (h *Handler) deletePlantForm(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(w, r)
	if !sess.LoggedIn() {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	plantName := r.PathValue("plant")

	plant, err := h.catalog.PlantByName(plantName)
	if errors.Is(err, catalog.ErrNotFound) {
		h.flashAndRedirect(w, r, sess, fmt.Sprintf("Delete failed! Plant: %s is not in catalog", plantName), "/catalog/")
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}
	if !catalog.CanModify(sess.Identity().UserID, plant.UserID) {
		h.flashAndRedirect(w, r, sess,
			fmt.Sprintf("Delete permission denied: User is not owner of %s", plantName), plantPath(plant))
		return
	}

	h.render(w, "deleteplant", web.DeletePlantPage{
		Page:  h.page(sess),
		Plant: plant,
	})
}

func (h *Handler) deletePlant(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(w, r)
	if !sess.LoggedIn() {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	plantName := r.PathValue("plant")

	plant, err := h.catalog.PlantByName(plantName)
	if errors.Is(err, catalog.ErrNotFound) {
		h.flashAndRedirect(w, r, sess, fmt.Sprintf("Delete failed! Plant: %s is not in catalog", plantName), "/catalog/")
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}

	err = h.catalog.Delete(plantName, sess.Identity().UserID)
	switch {
	case errors.Is(err, catalog.ErrForbidden):
		h.flashAndRedirect(w, r, sess,
			fmt.Sprintf("Delete permission denied: User is not owner of %s", plantName), plantPath(plant))
	case errors.Is(err, catalog.ErrNotFound):
		h.flashAndRedirect(w, r, sess, fmt.Sprintf("Delete failed! Plant: %s is not in catalog", plantName), "/catalog/")
	case err != nil:
		h.serverError(w, err)
	default:
		h.flashAndRedirect(w, r, sess, fmt.Sprintf("Plant %s successfully deleted", plantName), "/catalog/")
	}
}

func (h *Handler) page(sess *session.Session) web.Page {
	return web.Page{
		LoggedIn: sess.LoggedIn(),
		UserName: sess.Identity().Name,
		Flashes:  sess.TakeFlashes(),
	}
}

func (h *Handler) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.views.Render(w, name, data); err != nil {
		h.log.Errorf("rendering %s: %v", name, err)
	}
}

func (h *Handler) flashAndRedirect(w http.ResponseWriter, r *http.Request, sess *session.Session, msg, target string) {
	sess.Flash(msg)
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	h.log.Error(err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func plantPath(plant models.Plant) string {
	return fmt.Sprintf("/catalog/%s/%s/", plant.Category.Name, plant.Name)
}

func formValue(r *http.Request, key string) *string {
	v := r.PostFormValue(key)
	if v == "" {
		return nil
	}
	return &v
}

func valueOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
