package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sqldrift/sqldrift/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file interactively",
	Long:  `Walk through prompts to create a sqldrift configuration file at ~/.sqldrift/sqldrift.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)

		fmt.Println("sqldrift Configuration Setup")
		fmt.Println("============================")
		fmt.Println()

		mode := prompt(reader, "Data source (file/db)", "file")
		var srcLabel, tgtLabel string
		if mode == "db" {
			srcLabel = "Source connection (user:password@host:port~database)"
			tgtLabel = "Target connection (user:password@host:port~database)"
		} else {
			srcLabel = "Source dump path"
			tgtLabel = "Target dump path"
		}
		src := prompt(reader, srcLabel, "")
		tgt := prompt(reader, tgtLabel, "")
		out := prompt(reader, "Migration output path", "./migrate.sql")
		fmt.Println()

		cfg := &config.Config{
			Version: config.CurrentVersion,
			Mode:    mode,
			Source:  src,
			Target:  tgt,
			Output:  out,
		}

		cfgPath := config.ExpandHome(config.DefaultPath)
		if cfgFile != "" {
			cfgPath = cfgFile
		}

		if err := cfg.Save(cfgPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Printf("Config written to %s\n", cfgPath)
		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Println("  sqldrift                   — Generate the migration script")
		fmt.Println("  sqldrift dump <schema>     — Inspect how sqldrift reads a schema")
		fmt.Println("  sqldrift validate <dump>   — Check a dump file for problems")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func prompt(reader *bufio.Reader, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("  %s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("  %s: ", label)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}
