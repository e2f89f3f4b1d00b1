// koma prints every representation of shogi piece tokens.
//
// Tokens are USI letters ("P", "+b", ".") or KIF board cells ("v歩", "成銀"),
// given as arguments or read from -input (UTF-8 or Shift-JIS, optionally
// zstd-compressed).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"koma/internal/logx"
	"koma/pkg/koma"
)

func main() {
	configPath := flag.String("config", "", "path to config.json (default: search from working directory)")
	inputPath := flag.String("input", "", "file of whitespace separated tokens (.zst supported)")
	encoding := flag.String("encoding", "", "output encoding: utf-8 or shift_jis (overrides config)")
	flag.Parse()

	logger := logx.NewLogger()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if *encoding != "" {
		cfg.Encoding = *encoding
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid options")
	}

	tokens := flag.Args()
	if *inputPath != "" {
		fileTokens, err := readTokens(*inputPath)
		if err != nil {
			logger.Fatal().Err(err).Str("input", *inputPath).Msg("read tokens")
		}
		tokens = append(tokens, fileTokens...)
	}
	if len(tokens) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: koma [-input file] [-encoding utf-8|shift_jis] token...")
		flag.PrintDefaults()
		os.Exit(1)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	failed := run(out, tokens, cfg.Encoding, logger)
	if failed > 0 {
		out.Flush()
		logger.Fatal().Int("failed", failed).Int("tokens", len(tokens)).Msg("some tokens were not pieces")
	}
}

func loadConfig(path string) (koma.Config, error) {
	if path == "" {
		found, _, err := koma.FindConfigPath()
		if err != nil {
			return koma.DefaultConfig(), nil
		}
		path = found
	}
	return koma.LoadConfig(path)
}

func run(w io.Writer, tokens []string, encoding string, logger zerolog.Logger) int {
	failed := 0
	for _, token := range tokens {
		p, err := parseToken(token)
		if err != nil {
			logger.Warn().Err(err).Str("token", token).Msg("skip token")
			failed++
			continue
		}
		line := describe(p) + "\n"
		if encoding == koma.EncodingShiftJIS {
			encoded, err := koma.EncodeShiftJIS(line)
			if err != nil {
				logger.Warn().Err(err).Str("token", token).Msg("skip token")
				failed++
				continue
			}
			_, _ = w.Write(encoded)
			continue
		}
		_, _ = io.WriteString(w, line)
	}
	return failed
}

// parseToken accepts USI notation for ASCII tokens and KIF cells otherwise.
func parseToken(token string) (koma.Piece, error) {
	for i := 0; i < len(token); i++ {
		if token[i] >= 0x80 {
			return koma.ParseKIFCell(token)
		}
	}
	return koma.ParseUSI(token)
}

func describe(p koma.Piece) string {
	return fmt.Sprintf("%2d %-2s %s %s %s promoted=%t promotable=%t",
		int(p), p.USI(), p.Pretty(), p.Glyph(), p.Owner(), p.IsPromoted(), p.IsPromotable())
}

func readTokens(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		defer dec.Close()
		r = dec
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text, err := koma.DecodeText(data)
	if err != nil {
		return nil, err
	}
	return strings.Fields(text), nil
}
