package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqldrift/sqldrift/internal/ddl"
	"github.com/sqldrift/sqldrift/internal/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate <dump.sql>",
	Short: "Check that a schema dump parses cleanly",
	Long: `Parse every CREATE TABLE statement in a dump file and report anything
sqldrift cannot understand: malformed definitions, unsupported features,
duplicate tables, and tables that fail structural checks.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading schema dump: %w", err)
		}

		stmts := ddl.ParseDump(string(data))
		if len(stmts) == 0 {
			return fmt.Errorf("no CREATE TABLE statements found in %s", args[0])
		}

		s := schema.New(args[0])
		var ok, failed int
		for _, stmt := range stmts {
			t, err := ddl.ParseCreateTable(stmt)
			if err != nil {
				failed++
				var unsupported *ddl.UnsupportedFeatureError
				if errors.As(err, &unsupported) {
					fmt.Println(warnStyle.Render(fmt.Sprintf("⚠ %v", err)))
				} else {
					fmt.Println(errorStyle.Render(fmt.Sprintf("✗ %v", err)))
				}
				continue
			}

			if err := s.Add(t); err != nil {
				failed++
				fmt.Println(errorStyle.Render(fmt.Sprintf("✗ %v", err)))
				continue
			}

			ok++
			fmt.Println(successStyle.Render(fmt.Sprintf("✓ %s", t.Name)) +
				dimStyle.Render(fmt.Sprintf(" (%d %s, %d %s)",
					len(t.Columns), plural(len(t.Columns), "column"),
					len(t.Constraints), plural(len(t.Constraints), "constraint"))))
		}

		fmt.Println()
		if failed > 0 {
			return fmt.Errorf("%d of %d tables failed validation", failed, ok+failed)
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("All %d tables parsed cleanly.", ok)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
