package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "fixferry",
	Short: "legacy dump to fixture migration tool",
}

var extractCmd = &cobra.Command{
	Use:   "extract [config.toml]",
	Short: "parse the legacy dump and write per-entity fixture files",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExtract,
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize [config.toml]",
	Short: "repair non-canonical values in fixture files (idempotent)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNormalize,
}

var fixupCmd = &cobra.Command{
	Use:   "fixup [config.toml]",
	Short: "run the entity-specific repair passes (idempotent)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFixup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to migration TOML config file")
	rootCmd.AddCommand(extractCmd, normalizeCmd, fixupCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfig loads the config named by the positional arg or the
// --config flag; the positional arg takes precedence.
func resolveConfig(args []string) (*Config, error) {
	cfgPath := configPath
	if len(args) > 0 {
		cfgPath = args[0]
	}
	if cfgPath == "" {
		return nil, fmt.Errorf("config file required: fixferry <command> <config.toml> or --config <config.toml>")
	}
	return loadConfig(cfgPath)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(args)
	if err != nil {
		return err
	}
	if cfg.Input.Dump == "" {
		return fmt.Errorf("input.dump is required for extract")
	}

	start := time.Now()
	mapping := cfg.schemaMapping()

	log.Printf("fixferry — legacy dump → fixture extraction")
	log.Printf("config: dump=%s out=%s on_unmapped_table=%s on_row_mismatch=%s tables=%d",
		cfg.Input.Dump, cfg.Output.Dir, cfg.OnUnmappedTable, cfg.OnRowMismatch, len(mapping))

	res, err := extract(cfg, mapping)
	if err != nil {
		return err
	}

	log.Printf("emitting fixture files...")
	if err := emitFixtures(cfg.resolvePath(cfg.Output.Dir), res.entities, res.grouped); err != nil {
		return fmt.Errorf("emit fixtures: %w", err)
	}

	if cfg.Output.SQLite != "" {
		log.Printf("emitting inspection database...")
		if err := emitSQLite(cfg.resolvePath(cfg.Output.SQLite), res.entities, res.grouped); err != nil {
			return fmt.Errorf("emit sqlite: %w", err)
		}
	}

	res.report()
	log.Printf("extraction completed in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

func runNormalize(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(args)
	if err != nil {
		return err
	}

	start := time.Now()
	mapping := cfg.schemaMapping()

	log.Printf("fixferry — fixture normalization pass")
	if err := normalizeDir(cfg.resolvePath(cfg.Output.Dir), cfg.Output.BackupSuffix, mapping.Entities()); err != nil {
		return err
	}
	log.Printf("normalization completed in %s", time.Since(start).Round(time.Millisecond))
	return nil
}
