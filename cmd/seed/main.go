package main

import (
	"context"
	"log"

	"github.com/danuart/invitation-shop/internal/config"
	"github.com/danuart/invitation-shop/internal/es"
	"github.com/danuart/invitation-shop/internal/models"
	"github.com/danuart/invitation-shop/internal/repo"
	"github.com/danuart/invitation-shop/internal/service/catalog"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	ctx := context.Background()

	db, err := config.OpenDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	r := repo.New(db)

	var count int64
	if err := db.Model(&models.InvitationTemplate{}).Count(&count).Error; err != nil {
		log.Fatalf("count templates: %v", err)
	}
	if count > 0 {
		log.Printf("templates already seeded (%d rows), nothing to do", count)
		return
	}

	for i := range templates {
		if err := r.CreateTemplate(ctx, &templates[i]); err != nil {
			log.Fatalf("seed template %q: %v", templates[i].Name, err)
		}
	}
	log.Printf("seeded %d templates", len(templates))

	if cfg.ESURL == "" {
		log.Println("ES_URL not set, skipping search indexing")
		return
	}

	esClient, err := es.NewClient(cfg)
	if err != nil {
		log.Fatalf("elasticsearch init error: %v", err)
	}
	for i := range templates {
		if err := catalog.IndexTemplate(ctx, esClient, catalog.TemplateIndex, &templates[i]); err != nil {
			log.Fatalf("index template %q: %v", templates[i].Name, err)
		}
	}
	log.Printf("indexed %d templates into %s", len(templates), catalog.TemplateIndex)
}

var templates = []models.InvitationTemplate{
	{
		Name:         "Elegant Gold Wedding",
		Description:  "A luxurious gold-themed wedding invitation perfect for elegant ceremonies.",
		Price:        89.99,
		Category:     models.CategoryWedding,
		PreviewImage: "templates/wedding-elegant-gold.jpg",
		TemplateData: map[string]any{
			"colors": map[string]any{"primary": "#D4AF37", "secondary": "#FFFFFF", "accent": "#8B4513"},
			"fonts":  map[string]any{"heading": "Playfair Display", "body": "Open Sans"},
			"layout": "elegant",
			"elements": map[string]any{
				"floral": true, "geometric": false, "vintage": true,
			},
		},
		IsActive: true,
	},
	{
		Name:         "Rustic Floral Wedding",
		Description:  "Beautiful rustic design with floral elements, perfect for outdoor weddings.",
		Price:        69.99,
		Category:     models.CategoryWedding,
		PreviewImage: "templates/wedding-rustic-floral.jpg",
		TemplateData: map[string]any{
			"colors": map[string]any{"primary": "#8FBC8F", "secondary": "#F5F5DC", "accent": "#CD853F"},
			"fonts":  map[string]any{"heading": "Great Vibes", "body": "Lato"},
			"layout": "rustic",
			"elements": map[string]any{
				"floral": true, "geometric": false, "vintage": false,
			},
		},
		IsActive: true,
	},
	{
		Name:         "Modern Minimalist Wedding",
		Description:  "Clean lines and modern typography for the contemporary couple.",
		Price:        59.99,
		Category:     models.CategoryWedding,
		PreviewImage: "templates/wedding-modern-minimalist.jpg",
		TemplateData: map[string]any{
			"colors": map[string]any{"primary": "#2F4F4F", "secondary": "#FFFFFF", "accent": "#708090"},
			"fonts":  map[string]any{"heading": "Montserrat", "body": "Source Sans Pro"},
			"layout": "modern",
			"elements": map[string]any{
				"floral": false, "geometric": true, "vintage": false,
			},
		},
		IsActive: true,
	},
	{
		Name:         "Balloon Celebration",
		Description:  "Colorful balloons and festive design for memorable birthday parties.",
		Price:        29.99,
		Category:     models.CategoryBirthday,
		PreviewImage: "templates/birthday-balloon-celebration.jpg",
		TemplateData: map[string]any{
			"colors": map[string]any{"primary": "#FF6B6B", "secondary": "#4ECDC4", "accent": "#FFE66D"},
			"fonts":  map[string]any{"heading": "Dancing Script", "body": "Open Sans"},
			"layout": "classic",
			"elements": map[string]any{
				"floral": false, "geometric": true, "vintage": false,
			},
		},
		IsActive: true,
	},
	{
		Name:         "Golden Years Anniversary",
		Description:  "Celebrate decades of love with this warm, golden anniversary design.",
		Price:        49.99,
		Category:     models.CategoryAnniversary,
		PreviewImage: "templates/anniversary-golden-years.jpg",
		TemplateData: map[string]any{
			"colors": map[string]any{"primary": "#DAA520", "secondary": "#FFF8DC", "accent": "#B8860B"},
			"fonts":  map[string]any{"heading": "Playfair Display", "body": "Lato"},
			"layout": "elegant",
			"elements": map[string]any{
				"floral": true, "geometric": false, "vintage": true,
			},
		},
		IsActive: true,
	},
	{
		Name:         "Little Prince Baby Shower",
		Description:  "Sweet pastel design welcoming the newest little member of the family.",
		Price:        24.99,
		Category:     models.CategoryBabyShower,
		PreviewImage: "templates/baby-shower-little-prince.jpg",
		TemplateData: map[string]any{
			"colors": map[string]any{"primary": "#ADD8E6", "secondary": "#FFFFFF", "accent": "#FFD700"},
			"fonts":  map[string]any{"heading": "Dancing Script", "body": "Roboto"},
			"layout": "classic",
			"elements": map[string]any{
				"floral": false, "geometric": false, "vintage": false,
			},
		},
		IsActive: true,
	},
	{
		Name:         "Academic Achievement",
		Description:  "A proud moment deserves a distinguished graduation announcement.",
		Price:        34.99,
		Category:     models.CategoryGraduation,
		PreviewImage: "templates/graduation-academic-achievement.jpg",
		TemplateData: map[string]any{
			"colors": map[string]any{"primary": "#191970", "secondary": "#FFFFFF", "accent": "#FFD700"},
			"fonts":  map[string]any{"heading": "Montserrat", "body": "Source Sans Pro"},
			"layout": "modern",
			"elements": map[string]any{
				"floral": false, "geometric": true, "vintage": false,
			},
		},
		IsActive: true,
	},
}
