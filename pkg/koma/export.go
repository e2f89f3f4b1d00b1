package koma

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

// PieceRow describes one packed value for consumers that index tables by
// the raw piece value.
type PieceRow struct {
	Value         int32  `parquet:"name=value, type=INT32"`
	Owner         string `parquet:"name=owner, type=BYTE_ARRAY, convertedtype=UTF8"`
	RawKind       int32  `parquet:"name=raw_kind, type=INT32"`
	Promoted      bool   `parquet:"name=promoted, type=BOOLEAN"`
	Constructible bool   `parquet:"name=constructible, type=BOOLEAN"`
	USI           string `parquet:"name=usi, type=BYTE_ARRAY, convertedtype=UTF8"`
	Pretty        string `parquet:"name=pretty, type=BYTE_ARRAY, convertedtype=UTF8"`
	Glyph         string `parquet:"name=glyph, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// TableSchema is the JSON column list kept next to the parquet output. It
// must name exactly the columns tagged on PieceRow.
type TableSchema struct {
	Name    string        `json:"name"`
	Columns []TableColumn `json:"fields"`
}

type TableColumn struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// Table returns one row per packed value, in value order. Unused slots are
// kept so that row i describes Piece(i).
func Table() []PieceRow {
	rows := make([]PieceRow, 0, int(PieceNone))
	for p := Empty; p < PieceNone; p++ {
		rows = append(rows, PieceRow{
			Value:         int32(p),
			Owner:         p.Owner().String(),
			RawKind:       int32(p.RawKind()),
			Promoted:      p.IsPromoted(),
			Constructible: isReachable(p),
			USI:           p.USI(),
			Pretty:        p.Pretty(),
			Glyph:         p.Glyph(),
		})
	}
	return rows
}

// isReachable reports whether p can come out of Empty, MakePiece or
// MakePromotedPiece.
func isReachable(p Piece) bool {
	if p == Empty {
		return true
	}
	if !p.IsOk() || p == WEmpty {
		return false
	}
	kind := p.KindIgnoringOwner()
	return isConstructible(kind) || (BProPawn <= kind && kind <= BDragon)
}

// WriteParquet checks schemaPath against PieceRow and writes every row
// received until rows is closed. It stops reading rows at the first error.
func WriteParquet(path, schemaPath string, rows <-chan PieceRow, parallel int64) error {
	schema, err := LoadTableSchema(schemaPath)
	if err != nil {
		return err
	}
	if err := schema.Check(); err != nil {
		return fmt.Errorf("%s: %w", schemaPath, err)
	}

	fileWriter, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	defer fileWriter.Close()

	parquetWriter, err := writer.NewParquetWriter(fileWriter, new(PieceRow), parallel)
	if err != nil {
		return err
	}
	parquetWriter.CompressionType = parquet.CompressionCodec_SNAPPY

	for row := range rows {
		if err := parquetWriter.Write(row); err != nil {
			return err
		}
	}
	if err := parquetWriter.WriteStop(); err != nil {
		return err
	}
	return fileWriter.Close()
}

func ReadParquet(path string, parallel int64) ([]PieceRow, error) {
	absPath := path
	if !filepath.IsAbs(path) {
		if resolved, err := filepath.Abs(path); err == nil {
			absPath = resolved
		}
	}
	fileReader, err := local.NewLocalFileReader(absPath)
	if err != nil {
		return nil, err
	}
	defer fileReader.Close()

	parquetReader, err := reader.NewParquetReader(fileReader, new(PieceRow), parallel)
	if err != nil {
		return nil, err
	}
	defer parquetReader.ReadStop()

	num := int(parquetReader.GetNumRows())
	rows := make([]PieceRow, num)
	if num == 0 {
		return rows, nil
	}
	if err := parquetReader.Read(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func LoadTableSchema(path string) (TableSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TableSchema{}, err
	}
	var schema TableSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return TableSchema{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return schema, nil
}

// Check compares the schema columns with the PieceRow parquet tags. Names in
// the error are sorted.
func (s TableSchema) Check() error {
	listed := make([]string, 0, len(s.Columns))
	for _, col := range s.Columns {
		listed = append(listed, col.Name)
	}
	tagged := pieceRowColumns()
	unknown := subtract(listed, tagged)
	unlisted := subtract(tagged, listed)
	if len(unknown) == 0 && len(unlisted) == 0 {
		return nil
	}
	return fmt.Errorf("parquet schema mismatch: unknown columns %v, unlisted PieceRow columns %v", unknown, unlisted)
}

// pieceRowColumns returns the name= option of every PieceRow parquet tag.
func pieceRowColumns() []string {
	rt := reflect.TypeOf(PieceRow{})
	cols := make([]string, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		for _, opt := range strings.Split(rt.Field(i).Tag.Get("parquet"), ",") {
			if name, ok := strings.CutPrefix(strings.TrimSpace(opt), "name="); ok {
				cols = append(cols, name)
			}
		}
	}
	return cols
}

// subtract returns the names in a that are absent from b, sorted.
func subtract(a, b []string) []string {
	var out []string
	for _, name := range a {
		if !slices.Contains(b, name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
