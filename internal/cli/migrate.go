package cli

import (
	"fmt"

	"github.com/ddproperty/ddproperty-api/data"
	"github.com/ddproperty/ddproperty-api/internal/database"
	"github.com/ddproperty/ddproperty-api/internal/repository"
	"github.com/ddproperty/ddproperty-api/internal/services"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if err := database.AutoMigrate(e.db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			return report(cmd.OutOrStdout(), map[string]int{"models": len(database.Models())},
				fmt.Sprintf("migrated %d models", len(database.Models())))
		},
	}
}

func newSeedZonesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-zones",
		Short: "Insert or update the built-in zones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			zones, err := services.LoadZones(data.Zones)
			if err != nil {
				return err
			}
			n, err := services.NewZoneService(repository.NewZoneRepository(e.db)).Seed(cmd.Context(), zones)
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), map[string]int64{"zones": n}, fmt.Sprintf("seeded %d zones", n))
		},
	}
}
