// piecetable writes the 32-entry piece table to a parquet file for tools that
// index by packed piece value.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"koma/internal/logx"
	"koma/pkg/koma"
)

type options struct {
	configPath string
	outputPath string
	parallel   int
	verify     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to config.json (default: search from working directory)")
	flag.StringVar(&opts.outputPath, "output", "piece_table.parquet", "output parquet file")
	flag.IntVar(&opts.parallel, "parallel", 0, "parquet writer parallelism (0 = config value)")
	flag.BoolVar(&opts.verify, "verify", true, "read the file back and compare with the table")
	flag.Parse()

	logger := logx.NewLogger()
	if err := run(opts, logger); err != nil {
		logger.Fatal().Err(err).Str("output", opts.outputPath).Msg("piece table")
	}
}

func run(opts options, logger zerolog.Logger) error {
	cfg, repoRoot, err := loadConfig(opts.configPath, logger)
	if err != nil {
		return err
	}
	if opts.parallel > 0 {
		cfg.Parallel = opts.parallel
	}
	schemaPath := koma.ResolvePath(cfg.Schema, repoRoot)

	if dir := filepath.Dir(opts.outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	table := koma.Table()
	if err := writeTable(opts.outputPath, schemaPath, table, cfg.Parallel); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}
	logger.Info().Str("output", opts.outputPath).Int("rows", len(table)).Msg("wrote piece table")

	if !opts.verify {
		return nil
	}
	got, err := koma.ReadParquet(opts.outputPath, int64(cfg.Parallel))
	if err != nil {
		return fmt.Errorf("read back parquet: %w", err)
	}
	if len(got) != len(table) {
		return fmt.Errorf("row count mismatch: got %d want %d", len(got), len(table))
	}
	for i := range table {
		if got[i] != table[i] {
			return fmt.Errorf("row %d mismatch: got %s want %s", i, got[i].USI, table[i].USI)
		}
	}
	logger.Info().Msg("verified piece table")
	return nil
}

// writeTable feeds table to a WriteParquet goroutine. A writer that fails
// early stops the feed instead of leaving the sender blocked.
func writeTable(path, schemaPath string, table []koma.PieceRow, parallel int) error {
	rows := make(chan koma.PieceRow, parallel)
	writeErr := make(chan error, 1)
	go func() {
		writeErr <- koma.WriteParquet(path, schemaPath, rows, int64(parallel))
	}()
	for i, row := range table {
		select {
		case rows <- row:
		case err := <-writeErr:
			close(rows)
			if err == nil {
				err = fmt.Errorf("writer stopped after %d of %d rows", i, len(table))
			}
			return err
		}
	}
	close(rows)
	return <-writeErr
}

// loadConfig returns the config and the directory that relative paths in it
// are resolved against.
func loadConfig(arg string, logger zerolog.Logger) (koma.Config, string, error) {
	if arg != "" {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return koma.Config{}, "", err
		}
		cfg, err := koma.LoadConfig(abs)
		if err != nil {
			return koma.Config{}, "", fmt.Errorf("load config: %w", err)
		}
		return cfg, filepath.Dir(abs), nil
	}
	path, root, err := koma.FindConfigPath()
	if err != nil {
		logger.Debug().Err(err).Msg("using default config")
		cwd, err := os.Getwd()
		if err != nil {
			return koma.Config{}, "", err
		}
		return koma.DefaultConfig(), cwd, nil
	}
	cfg, err := koma.LoadConfig(path)
	if err != nil {
		return koma.Config{}, "", fmt.Errorf("load config: %w", err)
	}
	return cfg, root, nil
}
