package koma_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"koma/pkg/koma"
)

var schemaPath = filepath.Join("..", "..", "schema", "piece_table.json")

func TestTable(t *testing.T) {
	rows := koma.Table()
	if len(rows) != int(koma.PieceNone) {
		t.Fatalf("unexpected row count: got %d want %d", len(rows), int(koma.PieceNone))
	}
	for i, row := range rows {
		if int(row.Value) != i {
			t.Fatalf("row %d holds value %d", i, row.Value)
		}
	}
	unreachable := []int32{}
	for _, row := range rows {
		if !row.Constructible {
			unreachable = append(unreachable, row.Value)
		}
	}
	want := []int32{int32(koma.BQueen), int32(koma.WEmpty), int32(koma.WQueen)}
	if diff := cmp.Diff(want, unreachable); diff != "" {
		t.Fatalf("unreachable slots mismatch (-want +got):\n%s", diff)
	}
	horse := rows[koma.WHorse]
	wantHorse := koma.PieceRow{
		Value:         int32(koma.WHorse),
		Owner:         "white",
		RawKind:       int32(koma.BBishop),
		Promoted:      true,
		Constructible: true,
		USI:           "+b",
		Pretty:        "v馬",
		Glyph:         "馬",
	}
	if diff := cmp.Diff(wantHorse, horse); diff != "" {
		t.Fatalf("horse row mismatch (-want +got):\n%s", diff)
	}
}

func TestParquetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "piece_table.parquet")
	table := koma.Table()
	rows := make(chan koma.PieceRow, len(table))
	for _, row := range table {
		rows <- row
	}
	close(rows)
	if err := koma.WriteParquet(path, schemaPath, rows, 1); err != nil {
		t.Fatalf("failed to write parquet: %v", err)
	}
	got, err := koma.ReadParquet(path, 1)
	if err != nil {
		t.Fatalf("failed to read parquet: %v", err)
	}
	if diff := cmp.Diff(table, got); diff != "" {
		t.Fatalf("parquet round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteParquetSchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "schema.json")
	if err := os.WriteFile(bad, []byte(`{"name":"piece_table","fields":[{"name":"value"},{"name":"sfen"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	rows := make(chan koma.PieceRow)
	close(rows)
	err := koma.WriteParquet(filepath.Join(dir, "out.parquet"), bad, rows, 1)
	if err == nil || !strings.Contains(err.Error(), "parquet schema mismatch") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTableSchemaCheckSortsNames(t *testing.T) {
	schema := koma.TableSchema{Name: "piece_table"}
	for _, name := range []string{"zobrist", "value", "usi", "sfen", "owner", "raw_kind"} {
		schema.Columns = append(schema.Columns, koma.TableColumn{Name: name})
	}
	want := "parquet schema mismatch: unknown columns [sfen zobrist], unlisted PieceRow columns [constructible glyph pretty promoted]"
	for i := 0; i < 5; i++ {
		err := schema.Check()
		if err == nil || err.Error() != want {
			t.Fatalf("unexpected error: got %v want %s", err, want)
		}
	}
}

func TestLoadTableSchema(t *testing.T) {
	schema, err := koma.LoadTableSchema(schemaPath)
	if err != nil {
		t.Fatalf("failed to load schema: %v", err)
	}
	if err := schema.Check(); err != nil {
		t.Fatalf("schema does not match PieceRow: %v", err)
	}
	if len(schema.Columns) != 8 || schema.Columns[0].Type != "integer" {
		t.Fatalf("unexpected columns: %+v", schema.Columns)
	}
}
