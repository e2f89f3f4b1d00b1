package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"koma/pkg/koma"
)

func writeConfig(t *testing.T, dir, schema string) string {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	data := `{"encoding":"utf-8","schema":"` + schema + `","parallel":1}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runWithTimeout fails the test instead of hanging when run never returns.
func runWithTimeout(t *testing.T, opts options) error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- run(opts, zerolog.Nop())
	}()
	select {
	case err := <-done:
		return err
	case <-time.After(30 * time.Second):
		t.Fatal("run did not return")
		return nil
	}
}

func TestRunMissingSchema(t *testing.T) {
	dir := t.TempDir()
	opts := options{
		configPath: writeConfig(t, dir, "missing.json"),
		outputPath: filepath.Join(dir, "out", "piece_table.parquet"),
		verify:     true,
	}
	err := runWithTimeout(t, opts)
	if err == nil || !strings.Contains(err.Error(), "missing.json") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunSchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "schema.json")
	if err := os.WriteFile(schema, []byte(`{"name":"piece_table","fields":[{"name":"value","type":"integer"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	opts := options{
		configPath: writeConfig(t, dir, "schema.json"),
		outputPath: filepath.Join(dir, "piece_table.parquet"),
	}
	err := runWithTimeout(t, opts)
	if err == nil || !strings.Contains(err.Error(), "parquet schema mismatch") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunWritesAndVerifies(t *testing.T) {
	dir := t.TempDir()
	schema, err := filepath.Abs(filepath.Join("..", "..", "schema", "piece_table.json"))
	if err != nil {
		t.Fatal(err)
	}
	opts := options{
		configPath: writeConfig(t, dir, filepath.ToSlash(schema)),
		outputPath: filepath.Join(dir, "piece_table.parquet"),
		parallel:   2,
		verify:     true,
	}
	if err := runWithTimeout(t, opts); err != nil {
		t.Fatalf("failed to write piece table: %v", err)
	}
	got, err := koma.ReadParquet(opts.outputPath, 1)
	if err != nil {
		t.Fatalf("failed to read piece table: %v", err)
	}
	if diff := cmp.Diff(koma.Table(), got); diff != "" {
		t.Fatalf("piece table mismatch (-want +got):\n%s", diff)
	}
}

func TestRunBadConfigPath(t *testing.T) {
	opts := options{
		configPath: filepath.Join(t.TempDir(), "nope.json"),
		outputPath: filepath.Join(t.TempDir(), "piece_table.parquet"),
	}
	if err := runWithTimeout(t, opts); err == nil {
		t.Fatal("expected error for missing config")
	}
}
