// Package cli wires the command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/config"
	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/logging"
	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/repository"
	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/schema"
	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/workbook"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// BuildInfo is stamped into the binary at release time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type app struct {
	configPath string
	cfg        *config.Config
	repos      *repository.Repositories
}

// NewRootCommand builds the command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	a := &app{}
	v := config.New()

	rootCmd := &cobra.Command{
		Use:   "carrental",
		Short: "Run a car rental business out of an Excel workbook",
		Long: `carrental keeps vehicles, customers, rentals and maintenance events
as tables inside an .xlsx workbook. Sheets and tables are created on first use.`,
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is normal.
			if err := godotenv.Load(); err == nil {
				slog.Debug("loaded .env file")
			}

			cfg, err := config.Load(v, a.configPath)
			if err != nil {
				return err
			}
			logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)

			a.cfg = cfg
			a.repos = openRepositories(cfg.Workbook)
			slog.Debug("configuration loaded", "workbook", cfg.Workbook, "log_level", cfg.Log.Level)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd, false)
		},
	}
	rootCmd.SetVersionTemplate(fmt.Sprintf("carrental %s\ncommit: %s\nbuilt: %s\n", info.Version, info.Commit, info.Date))

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.String("workbook", "", "Workbook path (default: rental.xlsx)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: text, json")
	_ = v.BindPFlag("workbook", flags.Lookup("workbook"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))

	rootCmd.AddCommand(
		a.schemaCommand(),
		a.seedCommand(),
		a.listCommand(),
		a.addCommand(),
		a.updateCommand(),
		a.deleteCommand(),
		a.exportCommand(),
		a.importCommand(),
		a.tuiCommand(),
	)

	return rootCmd
}

// Execute runs the root command and reports any error on stderr.
func Execute(info BuildInfo) error {
	rootCmd := NewRootCommand(info)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func openRepositories(path string) *repository.Repositories {
	return repository.New(workbook.NewStore(path), schema.NewCatalog())
}
