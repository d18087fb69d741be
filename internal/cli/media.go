package cli

import (
	"fmt"

	"github.com/ddproperty/ddproperty-api/internal/cache"
	"github.com/ddproperty/ddproperty-api/internal/media"
	"github.com/spf13/cobra"
)

func newSweepMediaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-media",
		Short: "Move media still in staging into property folders",
		Long:  "Runs one reconcile pass over images, floor plans and unit plans whose URLs still point at the staging area. When REDIS_ADDR is set the listing cache is invalidated after files were placed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			var invalidator media.Invalidator
			if e.cfg.RedisAddr != "" {
				rc := cache.NewRedis(cache.Dial(e.cfg.RedisAddr, e.cfg.RedisPassword, e.cfg.RedisDB), e.cfg.CacheTTL, e.logger)
				defer rc.Close()
				invalidator = rc
			}

			relocator := media.NewRelocator(e.cfg.UploadDir, e.cfg.MediaURLPrefix, e.logger)
			result, err := media.NewSweeper(e.db, relocator, invalidator, e.logger).Sweep(cmd.Context())
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), result,
				fmt.Sprintf("%d pending, %d placed", result.Pending, result.Placed))
		},
	}
}
