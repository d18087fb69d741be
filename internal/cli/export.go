package cli

import (
	"fmt"
	"os"

	"github.com/ddproperty/ddproperty-api/internal/media"
	"github.com/ddproperty/ddproperty-api/internal/repository"
	"github.com/ddproperty/ddproperty-api/internal/services"
	"github.com/ddproperty/ddproperty-api/internal/taxonomy"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var (
		userID uint
		status string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write an owner's properties to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == 0 {
				return fmt.Errorf("--user is required")
			}
			if out == "" {
				out = fmt.Sprintf("properties-%d.xlsx", userID)
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			owner, err := repository.NewUserRepository(e.db).FindByID(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("user %d: %w", userID, err)
			}

			relocator := media.NewRelocator(e.cfg.UploadDir, e.cfg.MediaURLPrefix, e.logger)
			repo := repository.NewPropertyRepository(e.db, taxonomy.NewNormalizer(e.logger), relocator, e.logger)
			svc := services.NewPropertyService(repo, nil, nil, nil, e.cfg.BaseURL, e.logger)

			q := map[string]string{}
			if status != "" {
				q["status"] = status
			}
			workbook, err := svc.Export(cmd.Context(), services.Actor{ID: owner.ID, Role: owner.Role}, q)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, workbook, 0o644); err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), map[string]interface{}{"file": out, "bytes": len(workbook)},
				fmt.Sprintf("wrote %s (%d bytes)", out, len(workbook)))
		},
	}

	cmd.Flags().UintVar(&userID, "user", 0, "owner user id")
	cmd.Flags().StringVar(&status, "status", "", "only properties with this status (default all)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default properties-<user>.xlsx)")

	return cmd
}
