package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sqldrift/sqldrift/internal/config"
	"github.com/sqldrift/sqldrift/internal/diff"
	"github.com/sqldrift/sqldrift/internal/logging"
	"github.com/sqldrift/sqldrift/internal/report"
	"github.com/sqldrift/sqldrift/internal/schema"
	"github.com/sqldrift/sqldrift/internal/source"
	"github.com/sqldrift/sqldrift/internal/sqlgen"
)

var (
	cfgFile    string
	logLevel   string
	logDir     string
	dataSource string
	sourceSpec string
	targetSpec string
	outputPath string
	reportPath string

	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "sqldrift",
	Short: "sqldrift — MySQL schema drift detector",
	Long: `sqldrift compares two MySQL schemas and writes the DDL migration
script that brings the target schema in line with the source.

Each side is either a schema dump file or a live server reached through a
user:password@host:port~database connection string.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiff(cmd)
	},
}

func Execute() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.sqldrift/sqldrift.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "log directory (default: ~/.sqldrift/logs/)")

	rootCmd.Flags().StringVarP(&dataSource, "data-source", "d", "", "where the schemas come from: file or db")
	rootCmd.Flags().StringVarP(&sourceSpec, "source", "s", "", "source schema: dump path or connection string")
	rootCmd.Flags().StringVarP(&targetSpec, "target", "t", "", "target schema: dump path or connection string")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output path for the migration script")
	rootCmd.Flags().StringVar(&reportPath, "report", "", "also write a JSON drift report to this path")
}

func runDiff(cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	mode := resolve(dataSource, cfg.Mode)
	src := resolve(sourceSpec, cfg.Source)
	tgt := resolve(targetSpec, cfg.Target)
	out := resolve(outputPath, cfg.Output)

	if src == "" || tgt == "" {
		return fmt.Errorf("both --source and --target are required (as flags or in the config file)")
	}
	if out == "" {
		return fmt.Errorf("--output is required (as a flag or in the config file)")
	}

	logger, err := logging.Setup(
		resolve(logLevel, cfg.Logging.Level),
		resolve(logDir, cfg.Logging.Directory),
		cfg.Logging.RetentionDays,
	)
	if err != nil {
		return err
	}

	srcLoader, err := source.New(mode, src, cfg.Concurrency.MaxConnections)
	if err != nil {
		return err
	}
	tgtLoader, err := source.New(mode, tgt, cfg.Concurrency.MaxConnections)
	if err != nil {
		return err
	}

	logger.Info("loading schemas",
		"mode", mode,
		"source", srcLoader.Describe(),
		"target", tgtLoader.Describe())

	var srcSchema, tgtSchema *schema.Schema
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		s, err := srcLoader.Load(ctx)
		if err != nil {
			return fmt.Errorf("loading source schema: %w", err)
		}
		srcSchema = s
		return nil
	})
	g.Go(func() error {
		s, err := tgtLoader.Load(ctx)
		if err != nil {
			return fmt.Errorf("loading target schema: %w", err)
		}
		tgtSchema = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("schemas loaded",
		"source_tables", len(srcSchema.Tables),
		"target_tables", len(tgtSchema.Tables))

	d := diff.Compute(srcSchema, tgtSchema)
	stmts := sqlgen.Render(d)

	if err := os.WriteFile(out, []byte(sqlgen.Script(stmts)), 0o644); err != nil {
		return fmt.Errorf("writing migration script: %w", err)
	}
	logger.Info("migration script written", "path", out, "statements", len(stmts))

	r := report.Generate(
		mode, srcLoader.Describe(), len(srcSchema.Tables),
		mode, tgtLoader.Describe(), len(tgtSchema.Tables),
		d,
	)
	if reportPath != "" {
		if err := report.WriteJSON(r, reportPath); err != nil {
			return err
		}
		logger.Info("drift report written", "path", reportPath)
	}

	printSummary(r, out, len(stmts))
	return nil
}

// resolve prefers the flag value over the config value.
func resolve(flag, cfg string) string {
	if flag != "" {
		return flag
	}
	return cfg
}
