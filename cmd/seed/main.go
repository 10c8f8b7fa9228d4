package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"hosting-billing-engine/internal/config"
	"hosting-billing-engine/internal/domain/model"
	pg "hosting-billing-engine/internal/infra/db/postgres"
	"hosting-billing-engine/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	planRepo := pg.NewPlanRepo(pool)
	planUC := usecase.NewPlanUseCase(planRepo)

	// If plans already exist, do nothing
	plans, err := planUC.List(ctx)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		for _, p := range plans {
			fmt.Printf("  - %s (%s, price=%d cents, storage=%dGB)\n", p.Name, p.Cycle, p.PriceCents, p.StorageGB)
		}
		return
	}

	// Seed the standard hosting tiers
	seed := []struct {
		Name      string
		Price     int64
		Cycle     model.BillingCycle
		Storage   int
		Bandwidth int
	}{
		{"Starter", 9_99, model.BillingCycleMonthly, 10, 100},
		{"Business", 29_99, model.BillingCycleMonthly, 50, 500},
		{"Premium", 59_99, model.BillingCycleMonthly, 200, 2000},
		{"Enterprise", 599_00, model.BillingCycleYearly, 1000, 10000},
	}

	for _, s := range seed {
		p, err := planUC.Create(ctx, s.Name, s.Price, s.Cycle, s.Storage, s.Bandwidth)
		if err != nil {
			log.Fatalf("create plan %q: %v", s.Name, err)
		}
		fmt.Printf("seeded: %s (id=%s, price=%d cents, cycle=%s)\n", p.Name, p.ID, p.PriceCents, p.Cycle)
	}

	fmt.Println("✅ Seeding complete.")
}
