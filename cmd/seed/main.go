package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bedic/places-backend/internal/config"
	"github.com/bedic/places-backend/internal/core/domain"
	"github.com/bedic/places-backend/internal/infrastructure/logging"
)

// fixture is one seeded catalog entry. Seeded places have no owner; they are
// registered by the platform itself.
type fixture struct {
	Name       string
	Category   domain.PlaceCategory
	Department string
	City       string
	Latitude   float64
	Longitude  float64
}

var fixtures = []fixture{
	{"Museo del Oro", domain.CategoryMuseum, "Cundinamarca", "Bogotá", 4.6018, -74.0722},
	{"Parque Arví", domain.CategoryPark, "Antioquia", "Medellín", 6.2800, -75.5010},
	{"Café San Alberto", domain.CategoryCafe, "Quindío", "Buenavista", 4.3591, -75.7390},
	{"Castillo San Felipe", domain.CategoryMuseum, "Bolívar", "Cartagena", 10.4225, -75.5394},
	{"Andrés Carne de Res", domain.CategoryRestaurant, "Cundinamarca", "Chía", 4.8639, -74.0548},
	{"Parque del Café", domain.CategoryPark, "Quindío", "Montenegro", 4.5422, -75.7718},
	{"Hotel Charlee", domain.CategoryHotel, "Antioquia", "Medellín", 6.2088, -75.5679},
	{"La Candelaria", domain.CategoryOther, "Cundinamarca", "Bogotá", 4.5964, -74.0730},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      "text",
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	seeded := 0
	for _, f := range fixtures {
		place, err := domain.NewPlace(domain.PlaceParams{
			Name:       f.Name,
			Category:   f.Category,
			Department: f.Department,
			City:       f.City,
			Latitude:   f.Latitude,
			Longitude:  f.Longitude,
		})
		if err != nil {
			logger.Error("invalid fixture", "name", f.Name, "error", err)
			os.Exit(1)
		}

		tag, err := pool.Exec(ctx, `
			INSERT INTO places (id, name, category, description, department, city, latitude, longitude, verified, created_at)
			SELECT $1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9
			WHERE NOT EXISTS (SELECT 1 FROM places WHERE name = $2 AND city = $6)`,
			uuid.New(), place.Name, place.Category, place.Description,
			place.Department, place.City, place.Latitude, place.Longitude, place.CreatedAt,
		)
		if err != nil {
			logger.Error("failed to seed place", "name", f.Name, "error", err)
			os.Exit(1)
		}
		seeded += int(tag.RowsAffected())
	}

	logger.Info("seeding complete", "inserted", seeded, "fixtures", len(fixtures))
}
