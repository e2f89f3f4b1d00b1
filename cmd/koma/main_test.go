package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"koma/pkg/koma"
)

func TestParseToken(t *testing.T) {
	tests := map[string]koma.Piece{
		"P":  koma.BPawn,
		"+r": koma.WDragon,
		".":  koma.Empty,
		"v歩": koma.WPawn,
		"成銀": koma.BProSilver,
		"v竜": koma.WDragon,
	}
	for token, want := range tests {
		got, err := parseToken(token)
		if err != nil {
			t.Fatalf("failed to parse %q: %v", token, err)
		}
		if got != want {
			t.Fatalf("unexpected piece for %q: got %s want %s", token, got, want)
		}
	}
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	failed := run(&out, []string{"P", "vと", "x"}, koma.EncodingUTF8, zerolog.Nop())
	if failed != 1 {
		t.Fatalf("unexpected failures: got %d want 1", failed)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	want := []string{
		" 1 P   歩 歩 black promoted=false promotable=true",
		"25 +p vと と white promoted=true promotable=false",
	}
	if len(lines) != len(want) {
		t.Fatalf("unexpected output: %q", out.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("unexpected line %d: got %q want %q", i, lines[i], want[i])
		}
	}
}

func TestRunShiftJIS(t *testing.T) {
	var out bytes.Buffer
	if failed := run(&out, []string{"+B"}, koma.EncodingShiftJIS, zerolog.Nop()); failed != 0 {
		t.Fatalf("unexpected failures: %d", failed)
	}
	text, err := koma.DecodeText(out.Bytes())
	if err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if !strings.Contains(text, " 馬 馬") {
		t.Fatalf("unexpected output: %q", text)
	}
}

func TestReadTokensZstd(t *testing.T) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("failed to create encoder: %v", err)
	}
	if _, err := enc.Write([]byte("P +b\nv金　成香\n")); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "tokens.txt.zst")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	tokens, err := readTokens(path)
	if err != nil {
		t.Fatalf("failed to read tokens: %v", err)
	}
	want := []string{"P", "+b", "v金", "成香"}
	if strings.Join(tokens, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected tokens: got %v want %v", tokens, want)
	}
}
