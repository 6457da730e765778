package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"campuseats/internal/config"
	"campuseats/internal/db"
	"campuseats/internal/model"
	"campuseats/internal/repository"
)

//go:embed campuses.json
var campusData []byte

// SeedCampusData represents one entry in the embedded campus dataset.
type SeedCampusData struct {
	Name      string  `json:"name"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func main() {
	log.Println("Starting seed script...")

	// Load configuration
	cfg := config.Load()

	// Connect to database
	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	// Run migrations to ensure schema is up to date
	if err := gormDB.AutoMigrate(&model.Campus{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	var campuses []SeedCampusData
	if err := json.Unmarshal(campusData, &campuses); err != nil {
		log.Fatalf("Failed to parse embedded campus dataset: %v", err)
	}
	log.Printf("Loaded %d campuses from embedded dataset", len(campuses))

	campusRepo := repository.NewCampusRepository(gormDB)
	ctx := context.Background()

	log.Println("Seeding campuses into database...")
	seeded, updated, err := seedCampuses(ctx, campusRepo, campuses)
	if err != nil {
		log.Fatalf("Failed to seed campuses: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New campuses created: %d", seeded)
	log.Printf("  - Existing campuses updated: %d", updated)
	log.Printf("  - Total campuses processed: %d", seeded+updated)
}

// seedCampuses upserts campuses by their unique (name, state) pair.
func seedCampuses(ctx context.Context, repo repository.CampusRepository, campuses []SeedCampusData) (seeded int, updated int, err error) {
	for _, item := range campuses {
		existing, err := repo.FindByNameAndState(ctx, item.Name, item.State)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return seeded, updated, fmt.Errorf("error checking campus %q: %w", item.Name, err)
		}

		if existing != nil {
			// Update existing campus
			existing.City = item.City
			existing.Latitude = item.Latitude
			existing.Longitude = item.Longitude
			if err := repo.Update(ctx, existing); err != nil {
				return seeded, updated, fmt.Errorf("error updating campus %q: %w", item.Name, err)
			}
			updated++
		} else {
			// Create new campus
			campus := model.Campus{
				Name:      item.Name,
				City:      item.City,
				State:     item.State,
				Latitude:  item.Latitude,
				Longitude: item.Longitude,
			}
			if err := repo.Create(ctx, &campus); err != nil {
				return seeded, updated, fmt.Errorf("error creating campus %q: %w", item.Name, err)
			}
			seeded++
		}
	}

	return seeded, updated, nil
}
