package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/merchlane/merchportal-backend/internal/departments"
	"github.com/merchlane/merchportal-backend/pkg/config"
	"github.com/merchlane/merchportal-backend/pkg/db"
	"github.com/merchlane/merchportal-backend/pkg/db/models"
	"github.com/merchlane/merchportal-backend/pkg/logger"
	"github.com/merchlane/merchportal-backend/pkg/migrate"
)

var departmentNames = []string{
	"Engineering",
	"Marketing",
	"Operations",
	"People",
}

type seedProduct struct {
	department         string
	name               string
	description        string
	priceCents         int
	discountPriceCents *int
	tags               []string
	stockQty           int
}

var catalog = []seedProduct{
	{department: "Engineering", name: "Terminal Hoodie", description: "Heavyweight zip hoodie with embroidered prompt.", priceCents: 5400, discountPriceCents: intPtr(4500), tags: []string{"apparel", "hoodie"}, stockQty: 120},
	{department: "Engineering", name: "Mechanical Keycap Set", description: "Two-shot PBT keycaps in portal colors.", priceCents: 3900, tags: []string{"desk", "keyboard"}, stockQty: 80},
	{department: "Engineering", name: "Debug Duck", description: "Classic rubber duck, now a colleague.", priceCents: 900, tags: []string{"desk", "fun"}, stockQty: 300},
	{department: "Marketing", name: "Brand Tee", description: "Soft cotton tee with the current campaign print.", priceCents: 2500, discountPriceCents: intPtr(1900), tags: []string{"apparel", "tee"}, stockQty: 200},
	{department: "Marketing", name: "Sticker Pack Vol. 3", description: "Twelve die-cut stickers, weatherproof vinyl.", priceCents: 700, tags: []string{"stickers"}, stockQty: 500},
	{department: "Operations", name: "Insulated Bottle", description: "750ml double-wall bottle, laser-etched logo.", priceCents: 3200, tags: []string{"drinkware"}, stockQty: 150},
	{department: "Operations", name: "Packing Tape Dispenser", description: "Branded dispenser for the shipping desk.", priceCents: 1800, tags: []string{"office"}, stockQty: 60},
	{department: "People", name: "Welcome Tote", description: "Canvas tote included in every onboarding kit.", priceCents: 1500, tags: []string{"bags", "onboarding"}, stockQty: 250},
	{department: "People", name: "Anniversary Pin", description: "Enamel pin awarded at each service year.", priceCents: 600, tags: []string{"pins"}, stockQty: 400},
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	seedDepartments := flag.Bool("departments", false, "create the fixed department list before seeding products")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	deptRepo := departments.NewRepository(dbClient.DB())

	if *seedDepartments {
		if err := ensureDepartments(ctx, deptRepo); err != nil {
			logg.Error(ctx, "failed to seed departments", err)
			os.Exit(1)
		}
	}

	if err := seedCatalog(ctx, dbClient, deptRepo, logg); err != nil {
		logg.Error(ctx, "failed to seed products", err)
		os.Exit(1)
	}

	logg.Info(ctx, fmt.Sprintf("seeded %d products", len(catalog)))
}

func ensureDepartments(ctx context.Context, repo *departments.Repository) error {
	for _, name := range departmentNames {
		existing, err := repo.FindByName(ctx, name)
		if err == nil && existing != nil {
			continue
		}
		if _, err := repo.Create(ctx, &models.Department{Name: name}); err != nil {
			return fmt.Errorf("create department %q: %w", name, err)
		}
	}
	return nil
}

// seedCatalog clears the products table and inserts the fixed catalog. A
// missing department aborts the run so a partial seed never goes unnoticed.
func seedCatalog(ctx context.Context, dbClient *db.Client, repo *departments.Repository, logg *logger.Logger) error {
	deptIDs := map[string]models.Department{}
	for _, item := range catalog {
		if _, ok := deptIDs[item.department]; ok {
			continue
		}
		dept, err := repo.FindByName(ctx, item.department)
		if err != nil {
			return fmt.Errorf("department lookup %q: %w", item.department, err)
		}
		deptIDs[item.department] = *dept
	}

	return dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Product{}).Error; err != nil {
			return fmt.Errorf("clear products: %w", err)
		}
		for _, item := range catalog {
			dept := deptIDs[item.department]
			desc := item.description
			product := models.Product{
				DepartmentID:       dept.ID,
				Name:               item.name,
				Description:        &desc,
				PriceCents:         item.priceCents,
				DiscountPriceCents: item.discountPriceCents,
				Tags:               item.tags,
				StockQty:           item.stockQty,
				IsActive:           true,
			}
			if err := tx.Create(&product).Error; err != nil {
				return fmt.Errorf("insert product %q: %w", item.name, err)
			}
		}
		return nil
	})
}

func intPtr(v int) *int {
	return &v
}
