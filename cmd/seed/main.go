package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"cardwallet/internal/config"
	"cardwallet/internal/db"
	"cardwallet/internal/model"
	"cardwallet/internal/repository"
)

// SeedShop is one curated shop entry in the fixture file.
type SeedShop struct {
	Name   string   `json:"name"`
	Color  string   `json:"color"`
	Logo   string   `json:"logo"`
	Groups []string `json:"groups"`
}

// SeedFixture is the fixture file layout: the category list plus the curated
// (verified) shop catalogue.
type SeedFixture struct {
	Groups []string   `json:"groups"`
	Shops  []SeedShop `json:"shops"`
}

func main() {
	fixturePath := flag.String("fixture", "seed.json", "path to the groups/shops fixture file")
	flag.Parse()

	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.Group{}, &model.Shop{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	fixture, err := loadFixture(*fixturePath)
	if err != nil {
		log.Fatalf("Failed to load fixture: %v", err)
	}
	log.Printf("Loaded %d groups and %d shops from %s", len(fixture.Groups), len(fixture.Shops), *fixturePath)

	ctx := context.Background()
	groupRepo := repository.NewGroupRepository(gormDB)
	shopRepo := repository.NewShopRepository(gormDB)

	groupsByName := make(map[string]model.Group, len(fixture.Groups))
	existing, err := groupRepo.List(ctx)
	if err != nil {
		log.Fatalf("Failed to list groups: %v", err)
	}
	for _, group := range existing {
		groupsByName[group.Name] = group
	}

	created := 0
	for _, name := range fixture.Groups {
		if _, ok := groupsByName[name]; ok {
			continue
		}
		group := model.Group{Name: name}
		if err := groupRepo.Create(ctx, &group); err != nil {
			log.Fatalf("Failed to create group %q: %v", name, err)
		}
		groupsByName[name] = group
		created++
	}
	log.Printf("Created %d groups (%d already present)", created, len(fixture.Groups)-created)

	created = 0
	skipped := 0
	for _, seedShop := range fixture.Shops {
		var groups []model.Group
		for _, groupName := range seedShop.Groups {
			group, ok := groupsByName[groupName]
			if !ok {
				log.Printf("Skipping shop %q: unknown group %q", seedShop.Name, groupName)
				groups = nil
				break
			}
			groups = append(groups, group)
		}
		if len(seedShop.Groups) > 0 && groups == nil {
			skipped++
			continue
		}

		shop := &model.Shop{
			Name:     seedShop.Name,
			Color:    seedShop.Color,
			Logo:     seedShop.Logo,
			Verified: true,
		}
		if err := shopRepo.Create(ctx, shop); err != nil {
			log.Fatalf("Failed to create shop %q: %v", seedShop.Name, err)
		}
		if len(groups) > 0 {
			if err := shopRepo.ReplaceGroups(ctx, shop, groups); err != nil {
				log.Fatalf("Failed to attach groups to shop %q: %v", seedShop.Name, err)
			}
		}
		created++
	}
	log.Printf("Created %d shops, skipped %d", created, skipped)
}

func loadFixture(path string) (*SeedFixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fixture SeedFixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return nil, err
	}
	return &fixture, nil
}
