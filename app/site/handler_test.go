package site

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbelos/plantcatalog/catalog"
	"github.com/mbelos/plantcatalog/log"
	"github.com/mbelos/plantcatalog/models"
	"github.com/mbelos/plantcatalog/session"
	"github.com/mbelos/plantcatalog/web"
)

// --- Mock catalog ---

type MockCatalog struct {
	Categories_ []models.Category
	Recent_     []models.Plant
	Plant_      models.Plant
	Creator     models.User
	Err         error

	createdInput catalog.NewPlant
	createdOwner uint
	updatedName  string
	updatedInput catalog.PlantUpdate
	updatedBy    uint
	deletedName  string
	deletedBy    uint
	deleteCalled bool
}

func (m *MockCatalog) Categories() ([]models.Category, error) {
	return m.Categories_, nil
}

func (m *MockCatalog) Recent(limit int) ([]models.Plant, error) {
	if limit < len(m.Recent_) {
		return m.Recent_[:limit], nil
	}
	return m.Recent_, nil
}

func (m *MockCatalog) PlantsInCategory(categoryName string) (models.Category, []models.Plant, error) {
	if m.Err != nil {
		return models.Category{}, nil, m.Err
	}
	return m.Plant_.Category, []models.Plant{m.Plant_}, nil
}

func (m *MockCatalog) Plant(categoryName, plantName string) (models.Plant, models.User, error) {
	if m.Err != nil {
		return models.Plant{}, models.User{}, m.Err
	}
	return m.Plant_, m.Creator, nil
}

func (m *MockCatalog) PlantByName(plantName string) (models.Plant, error) {
	return m.Plant_, nil
}

func (m *MockCatalog) Create(in catalog.NewPlant, ownerID uint) (models.Plant, error) {
	m.createdInput = in
	m.createdOwner = ownerID
	if m.Err != nil {
		return models.Plant{}, m.Err
	}
	p := m.Plant_
	p.Name = in.Name
	return p, nil
}

func (m *MockCatalog) Update(plantName string, upd catalog.PlantUpdate, requesterID uint) (models.Plant, error) {
	m.updatedName = plantName
	m.updatedInput = upd
	m.updatedBy = requesterID
	return m.Plant_, m.Err
}

func (m *MockCatalog) Delete(plantName string, requesterID uint) error {
	m.deleteCalled = true
	m.deletedName = plantName
	m.deletedBy = requesterID
	return m.Err
}

func newMockCatalog() *MockCatalog {
	bulbs := models.Category{ID: 1, Name: "Bulbs"}
	owner := models.User{ID: 1, Name: "Flora Bunda"}
	return &MockCatalog{
		Categories_: []models.Category{bulbs, {ID: 2, Name: "Trees"}},
		Plant_: models.Plant{
			ID:         1,
			Name:       "Daffodil",
			CategoryID: 1,
			Category:   bulbs,
			UserID:     owner.ID,
			User:       owner,
		},
		Creator: owner,
		Recent_: []models.Plant{{ID: 1, Name: "Daffodil", Category: bulbs}},
	}
}

// --- Helpers ---

func newTestHandler(t *testing.T, m *MockCatalog) (*http.ServeMux, *session.Manager) {
	t.Helper()
	views, err := web.NewViews()
	require.NoError(t, err)

	sessions := session.NewManager(time.Hour)
	mux := http.NewServeMux()
	NewHandler(m, sessions, views, log.New("test")).Register(mux)
	return mux, sessions
}

// login mints a session bound to the given user and returns its cookie.
func login(t *testing.T, sessions *session.Manager, userID uint, name string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	sess := sessions.Get(rec, httptest.NewRequest("GET", "/", nil))
	sess.SetIdentity(session.Identity{UserID: userID, Name: name})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func do(mux *http.ServeMux, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestHomeRendersCategoriesAndRecent(t *testing.T) {
	mux, _ := newTestHandler(t, newMockCatalog())

	for _, path := range []string{"/", "/catalog/"} {
		rec := do(mux, httptest.NewRequest("GET", path, nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Bulbs")
		assert.Contains(t, body, "Trees")
		assert.Contains(t, body, "Daffodil")
	}
}

func TestCategoryPage(t *testing.T) {
	mux, _ := newTestHandler(t, newMockCatalog())

	rec := do(mux, httptest.NewRequest("GET", "/catalog/Bulbs/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Daffodil")
}

func TestCategoryMissFlashesAndRedirects(t *testing.T) {
	m := newMockCatalog()
	m.Err = catalog.ErrNotFound
	mux, _ := newTestHandler(t, m)

	rec := do(mux, httptest.NewRequest("GET", "/catalog/Cacti/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/catalog/", rec.Header().Get("Location"))

	// The notice is queued on the visitor's session and shown on the next page.
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	m.Err = nil
	follow := httptest.NewRequest("GET", "/catalog/", nil)
	follow.AddCookie(cookies[0])
	rec = do(mux, follow)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Category: Cacti is not in catalog")
}

func TestPlantPageShowsOwnerControls(t *testing.T) {
	m := newMockCatalog()
	mux, sessions := newTestHandler(t, m)

	// Anonymous visitors see the plant but no edit or delete links.
	rec := do(mux, httptest.NewRequest("GET", "/catalog/Bulbs/Daffodil/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Daffodil")
	assert.NotContains(t, rec.Body.String(), "/edit/")
	assert.NotContains(t, rec.Body.String(), "/delete/")

	// The owner gets both.
	req := httptest.NewRequest("GET", "/catalog/Bulbs/Daffodil/", nil)
	req.AddCookie(login(t, sessions, 1, "Flora Bunda"))
	rec = do(mux, req)
	assert.Contains(t, rec.Body.String(), "/catalog/Daffodil/edit/")
	assert.Contains(t, rec.Body.String(), "/catalog/Daffodil/delete/")

	// A different signed-in user does not.
	req = httptest.NewRequest("GET", "/catalog/Bulbs/Daffodil/", nil)
	req.AddCookie(login(t, sessions, 2, "Someone Else"))
	rec = do(mux, req)
	assert.NotContains(t, rec.Body.String(), "/edit/")
}

func TestMutationsRequireLogin(t *testing.T) {
	m := newMockCatalog()
	mux, _ := newTestHandler(t, m)

	requests := []*http.Request{
		httptest.NewRequest("GET", "/catalog/newplant/", nil),
		httptest.NewRequest("POST", "/catalog/newplant/", nil),
		httptest.NewRequest("GET", "/catalog/Daffodil/edit/", nil),
		httptest.NewRequest("POST", "/catalog/Daffodil/edit/", nil),
		httptest.NewRequest("GET", "/catalog/Daffodil/delete/", nil),
		httptest.NewRequest("POST", "/catalog/Daffodil/delete/", nil),
	}
	for _, req := range requests {
		rec := do(mux, req)
		assert.Equal(t, http.StatusFound, rec.Code, "%s %s", req.Method, req.URL.Path)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	}
	assert.False(t, m.deleteCalled)
}

func TestCreatePlant(t *testing.T) {
	m := newMockCatalog()
	mux, sessions := newTestHandler(t, m)
	cookie := login(t, sessions, 1, "Flora Bunda")

	form := "name=Tulip&botanical_name=Tulipa&description=Cup+shaped&image=&category=Bulbs"
	req := httptest.NewRequest("POST", "/catalog/newplant/", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec := do(mux, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/catalog/Bulbs/Tulip/", rec.Header().Get("Location"))
	assert.Equal(t, uint(1), m.createdOwner)
	assert.Equal(t, catalog.NewPlant{
		Name:          "Tulip",
		BotanicalName: "Tulipa",
		Description:   "Cup shaped",
		Category:      "Bulbs",
	}, m.createdInput)
}

func TestCreatePlantWithoutName(t *testing.T) {
	m := newMockCatalog()
	m.Err = catalog.ErrNameRequired
	mux, sessions := newTestHandler(t, m)

	req := httptest.NewRequest("POST", "/catalog/newplant/", strings.NewReader("name="))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(login(t, sessions, 1, "Flora Bunda"))
	rec := do(mux, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/catalog/", rec.Header().Get("Location"))
}

func TestEditPlantSendsOnlyFilledFields(t *testing.T) {
	m := newMockCatalog()
	mux, sessions := newTestHandler(t, m)

	form := "name=&botanical_name=Narcissus+poeticus&description=&image=&category="
	req := httptest.NewRequest("POST", "/catalog/Daffodil/edit/", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(login(t, sessions, 1, "Flora Bunda"))
	rec := do(mux, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/catalog/Bulbs/Daffodil/", rec.Header().Get("Location"))
	assert.Equal(t, "Daffodil", m.updatedName)
	assert.Nil(t, m.updatedInput.Name)
	assert.Nil(t, m.updatedInput.Category)
	require.NotNil(t, m.updatedInput.BotanicalName)
	assert.Equal(t, "Narcissus poeticus", *m.updatedInput.BotanicalName)
}

func TestEditPlantForbiddenRedirectsToPlantPage(t *testing.T) {
	m := newMockCatalog()
	m.Err = catalog.ErrForbidden
	mux, sessions := newTestHandler(t, m)

	req := httptest.NewRequest("POST", "/catalog/Daffodil/edit/", strings.NewReader("name=Stolen"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(login(t, sessions, 2, "Someone Else"))
	rec := do(mux, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/catalog/Bulbs/Daffodil/", rec.Header().Get("Location"))
}

func TestDeletePlant(t *testing.T) {
	m := newMockCatalog()
	mux, sessions := newTestHandler(t, m)

	req := httptest.NewRequest("POST", "/catalog/Daffodil/delete/", nil)
	req.AddCookie(login(t, sessions, 1, "Flora Bunda"))
	rec := do(mux, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/catalog/", rec.Header().Get("Location"))
	assert.True(t, m.deleteCalled)
	assert.Equal(t, "Daffodil", m.deletedName)
	assert.Equal(t, uint(1), m.deletedBy)
}

func TestDeletePlantForbiddenRedirectsToPlantPage(t *testing.T) {
	m := newMockCatalog()
	m.Err = catalog.ErrForbidden
	mux, sessions := newTestHandler(t, m)

	req := httptest.NewRequest("POST", "/catalog/Daffodil/delete/", nil)
	req.AddCookie(login(t, sessions, 2, "Someone Else"))
	rec := do(mux, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/catalog/Bulbs/Daffodil/", rec.Header().Get("Location"))
}
