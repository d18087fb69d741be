// Package cli defines the propctl maintenance commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ddproperty/ddproperty-api/internal/config"
	"github.com/ddproperty/ddproperty-api/internal/database"
	"github.com/ddproperty/ddproperty-api/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	flagFormat  string
	flagEnvFile string
)

// NewRootCmd creates the root command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "propctl",
		Short:         "Maintain the DD Property database and media",
		Long:          "Maintenance tasks for the listing service: schema migration, zone seeding, media reconciliation and owner exports.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "load configuration from this .env file")

	root.AddCommand(
		newMigrateCmd(),
		newSeedZonesCmd(),
		newSweepMediaCmd(),
		newExportCmd(),
	)

	return root
}

// env is what every command runs against.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func openEnv() (*env, error) {
	if flagEnvFile != "" {
		os.Setenv("ENV_FILE", flagEnvFile)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel, "console", "propctl")
	if err != nil {
		return nil, err
	}
	db, err := database.Connect(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, db: db}, nil
}

func (e *env) close() {
	if err := database.Close(e.db); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
	_ = e.logger.Sync()
}

func isJSON() bool {
	return flagFormat == "json"
}

// report prints v as JSON, or text otherwise.
func report(w io.Writer, v interface{}, text string) error {
	if isJSON() {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
