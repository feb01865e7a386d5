// Command seed wipes the catalog database and loads the demo content: one
// user, seven plant categories, and a starter set of plants.
package main

import (
	"github.com/mbelos/plantcatalog/config"
	"github.com/mbelos/plantcatalog/log"
	"github.com/mbelos/plantcatalog/models"
)

type seedPlant struct {
	name          string
	botanicalName string
	description   string
	image         string
	category      string
}

var categories = []string{
	"Trees", "Shrubs", "Vines", "Perennials", "Annuals", "Vegetables", "Bulbs",
}

var plants = []seedPlant{
	{
		name:          "False Spirea",
		botanicalName: "Astilbe",
		description:   "Perennial with plume-like flower clusters and attractive cut foliage",
		image:         "/static/images/astilbe.JPG",
		category:      "Perennials",
	},
	{
		name:          "Beans 'Blue Lake'",
		botanicalName: "Snap Bean",
		description:   "Widely planted garden bean producing tender fleshy pods",
		image:         "/static/images/beans.JPG",
		category:      "Vegetables",
	},
	{
		name:          "Coreopsis",
		botanicalName: "Coreopsis grandiflora",
		description:   "Perennial with narrow leaves and bright yellow flower heads",
		image:         "/static/images/coreopsis.JPG",
		category:      "Perennials",
	},
	{
		name:          "Cosmos 'Sonata'",
		botanicalName: "Cosmos bipinnatus",
		description:   "Annual with divided leaves and daisy-like flowers in white and shades of pink and crimson",
		image:         "/static/images/cosmos.JPG",
		category:      "Annuals",
	},
	{
		name:          "Daffodil",
		botanicalName: "Narcissus",
		description:   "Reliable spring bulb with strapped leaves and trumpet-shaped blossoms",
		image:         "/static/images/daffodil.jpg",
		category:      "Bulbs",
	},
	{
		name:          "Daylily 'Stella d'Oro'",
		botanicalName: "Hemerocallis",
		description:   "Perennial with sword-shaped leaves and bright yellow lily-like flowers",
		image:         "/static/images/daylily.JPG",
		category:      "Perennials",
	},
	{
		name:          "Fuchsia",
		botanicalName: "Fuchsia hybrida",
		description:   "Popular shrub with showy dangling clusters of bi-colored pink or purplish flowers",
		image:         "/static/images/fuchsia.JPG",
		category:      "Shrubs",
	},
	{
		name:          "Honeysuckle",
		botanicalName: "Lonicera",
		description:   "Vine or deciduous shrub valued for frangrant tubular flowers",
		image:         "/static/images/honeysuckle.JPG",
		category:      "Vines",
	},
	{
		name:          "Hyacinth",
		botanicalName: "Hyacinthus orientalis",
		description:   "Spring bulb producing spikes of fragrant bell-shaped flowers",
		image:         "/static/images/hyacinth.jpg",
		category:      "Bulbs",
	},
	{
		name:          "Hydrangea",
		botanicalName: "Hydrangea macrophylla",
		description:   "Shrub with big bold leaves and large clusters of white, pink, or blue flowers",
		image:         "/static/images/hydrangea.JPG",
		category:      "Shrubs",
	},
	{
		name:          "Bearded Iris",
		botanicalName: "Iris",
		description:   "Rhizomous plants with sword-shaped leaves and showy flowers with tufts of hairs on the falls",
		image:         "/static/images/iris.jpg",
		category:      "Bulbs",
	},
	{
		name:          "English Lavender",
		botanicalName: "Lavandula augustifolia",
		description:   "Shrub native to the Mediterranean prized for purple flowers used for perfume",
		image:         "/static/images/lavender.JPG",
		category:      "Shrubs",
	},
	{
		name:          "Japanese Maple 'Bloodgood'",
		botanicalName: "Acer Palmatum",
		description:   "Airy and delicate deciduous tree with deep red foliage",
		image:         "/static/images/maple.JPG",
		category:      "Trees",
	},
	{
		name:          "French Marigold 'Bonanza'",
		botanicalName: "Tagetes patula",
		description:   "Summer anuual with ferny leaves and flowers which range in color from yellow through orange to reddish-brown",
		image:         "/static/images/marigold.JPG",
		category:      "Annuals",
	},
	{
		name:          "Heavenly Bamboo",
		botanicalName: "Nandina Domestica",
		description:   "Evergreen shrub reminiscent of bamboo with canelike stems and fine-textured foliage",
		image:         "/static/images/nandina.JPG",
		category:      "Shrubs",
	},
}

func main() {
	cfg := config.Load()
	logger := log.New(cfg.Env)

	db, err := models.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("opening database: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		logger.Fatalf("migrating database: %v", err)
	}

	// Start from a clean slate. Plants go first so the category and user
	// rows are not still referenced.
	for _, model := range []interface{}{&models.Plant{}, &models.Category{}, &models.User{}} {
		if err := db.Where("1 = 1").Delete(model).Error; err != nil {
			logger.Fatalf("clearing table: %v", err)
		}
	}

	users := models.NewUsersRepository(db)
	gardener := &models.User{
		Name:    "Flora Bunda",
		Email:   "florasflowers@gmail.com",
		Picture: "/static/images/blank_user.gif",
	}
	if err := users.Create(gardener); err != nil {
		logger.Fatalf("creating demo user: %v", err)
	}

	categoriesRepo := models.NewCategoriesRepository(db)
	byName := make(map[string]uint, len(categories))
	for _, name := range categories {
		category := &models.Category{Name: name}
		if err := categoriesRepo.Create(category); err != nil {
			logger.Fatalf("creating category %s: %v", name, err)
		}
		byName[name] = category.ID
	}

	plantsRepo := models.NewPlantsRepository(db)
	for _, p := range plants {
		err := plantsRepo.Create(&models.Plant{
			Name:          p.name,
			BotanicalName: p.botanicalName,
			Description:   p.description,
			Image:         p.image,
			CategoryID:    byName[p.category],
			UserID:        gardener.ID,
		})
		if err != nil {
			logger.Fatalf("creating plant %s: %v", p.name, err)
		}
	}

	logger.Printf("seeded %d categories and %d plants", len(categories), len(plants))
}
