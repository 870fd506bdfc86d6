package main

import (
	"log"

	"github.com/learnify/marketplace-service/config"
	"github.com/learnify/marketplace-service/internal/repository"
	"github.com/learnify/marketplace-service/internal/service"
	"github.com/learnify/marketplace-service/pkg/database"
	"github.com/spf13/cobra"
)

// newRecountCmd rebuilds every listing's enrollment counter from the ledger.
// Run it after a crash between a ledger write and the counter increment.
func newRecountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recount",
		Short: "Recompute total_enrolled for every class from the enrollment ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			db := database.NewPostgresDB(cfg.DSN())

			svc := service.NewReconciliationService(service.ReconciliationDeps{
				Ledger:   repository.NewEnrollmentRepository(db),
				Carts:    repository.NewCartRepository(db),
				Listings: repository.NewListingRepository(db),
				Users:    repository.NewUserRepository(db),
			})

			n, err := svc.Recount(cmd.Context())
			if err != nil {
				return err
			}
			log.Printf("[Recount] updated %d classes", n)
			return nil
		},
	}
}
