package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqldrift/sqldrift/internal/config"
	"github.com/sqldrift/sqldrift/internal/source"
	"github.com/sqldrift/sqldrift/internal/sqlgen"
)

var dumpOutput string

var dumpCmd = &cobra.Command{
	Use:   "dump <schema>",
	Short: "Print a schema in canonical CREATE TABLE form",
	Long: `Load a schema from a dump file or a live server and print every table
as a normalized CREATE TABLE statement. Useful for checking how sqldrift
reads a schema before diffing it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		mode := resolve(dataSource, cfg.Mode)
		loader, err := source.New(mode, args[0], cfg.Concurrency.MaxConnections)
		if err != nil {
			return err
		}

		s, err := loader.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading schema: %w", err)
		}

		stmts := make([]sqlgen.Statement, 0, len(s.Tables))
		for _, name := range s.TableNames() {
			stmts = append(stmts, sqlgen.Statement{
				Table: name,
				SQL:   sqlgen.CreateTable(s.Tables[name]),
			})
		}
		script := sqlgen.Script(stmts)

		if dumpOutput == "" {
			fmt.Print(script)
			return nil
		}
		if err := os.WriteFile(dumpOutput, []byte(script), 0o644); err != nil {
			return fmt.Errorf("writing schema dump: %w", err)
		}
		fmt.Printf("Schema written to %s (%d tables)\n", dumpOutput, len(stmts))
		return nil
	},
}

func init() {
	dumpCmd.Flags().StringVarP(&dataSource, "data-source", "d", "", "where the schema comes from: file or db")
	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "output path (default: stdout)")
	rootCmd.AddCommand(dumpCmd)
}
