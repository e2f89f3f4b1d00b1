package koma

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

const (
	goteMarker = 'v'
	emptyCell  = '・'
)

// DecodeText returns KIF text as UTF-8. Input may carry a UTF-8 BOM or be
// Shift-JIS encoded, as most KIF files from Japanese servers are.
func DecodeText(data []byte) (string, error) {
	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		data = data[3:]
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	reader := transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder())
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(decoded) {
		return "", errors.New("failed to decode Shift-JIS text")
	}
	return string(decoded), nil
}

// EncodeShiftJIS converts display text for writers of legacy KIF files.
func EncodeShiftJIS(text string) ([]byte, error) {
	encoded, _, err := transform.String(japanese.ShiftJIS.NewEncoder(), text)
	if err != nil {
		return nil, fmt.Errorf("encode Shift-JIS: %w", err)
	}
	return []byte(encoded), nil
}

// ParseKIFCell is the inverse of Pretty. The leading blank of a Black piece
// may be omitted, and the alternative spellings 王, 竜 and 成銀/成桂/成香 are
// accepted.
func ParseKIFCell(cell string) (Piece, error) {
	runes := []rune(cell)
	if len(runes) > 0 && (runes[0] == ' ' || runes[0] == '　') {
		runes = runes[1:]
	}
	p, consumed, err := parseCell(runes)
	if err != nil {
		return Empty, err
	}
	if consumed != len(runes) {
		return Empty, fmt.Errorf("%w: trailing text in cell %q", ErrUnknownPiece, cell)
	}
	return p, nil
}

// ParseKIFRow reads one board row of a KIF diagram such as
// "|v香v桂 ・ ・ ・ ・ ・v桂v香|一" into its nine cells, from file 9 to file 1.
func ParseKIFRow(row string) ([]Piece, error) {
	trim := strings.TrimSpace(row)
	if !strings.HasPrefix(trim, "|") {
		return nil, fmt.Errorf("board row must start with '|': %q", row)
	}
	trim = strings.TrimPrefix(trim, "|")
	end := strings.LastIndex(trim, "|")
	if end < 0 {
		return nil, fmt.Errorf("board row must end with '|': %q", row)
	}
	runes := []rune(trim[:end])
	cells := make([]Piece, 0, 9)
	for i := 0; i < len(runes); {
		r := runes[i]
		if r == ' ' || r == '\t' || r == '　' {
			i++
			continue
		}
		p, consumed, err := parseCell(runes[i:])
		if err != nil {
			return nil, err
		}
		cells = append(cells, p)
		i += consumed
	}
	if len(cells) != 9 {
		return nil, fmt.Errorf("expected 9 cells, got %d", len(cells))
	}
	return cells, nil
}

func parseCell(runes []rune) (Piece, int, error) {
	if len(runes) == 0 {
		return Empty, 0, fmt.Errorf("%w: missing piece", ErrUnknownPiece)
	}
	if runes[0] == emptyCell {
		return Empty, 1, nil
	}
	owner := Black
	offset := 0
	if runes[0] == goteMarker {
		owner = White
		offset = 1
	}
	kind, consumed, err := parseBoardPiece(runes[offset:])
	if err != nil {
		return Empty, 0, err
	}
	if kind.IsPromoted() && kind != BKing {
		return MakePromotedPiece(owner, kind.Demote()), offset + consumed, nil
	}
	return MakePiece(owner, kind), offset + consumed, nil
}

// parseBoardPiece returns the Black kind named at the start of runes and the
// number of runes it used.
func parseBoardPiece(runes []rune) (Piece, int, error) {
	if len(runes) == 0 {
		return Empty, 0, fmt.Errorf("%w: missing piece", ErrUnknownPiece)
	}
	switch runes[0] {
	case 'と':
		return BProPawn, 1, nil
	case '杏':
		return BProLance, 1, nil
	case '圭':
		return BProKnight, 1, nil
	case '全':
		return BProSilver, 1, nil
	case '馬':
		return BHorse, 1, nil
	case '龍', '竜':
		return BDragon, 1, nil
	case '成':
		if len(runes) < 2 {
			return Empty, 0, fmt.Errorf("%w: missing promoted piece", ErrUnknownPiece)
		}
		base, ok := promotedBase(runes[1])
		if !ok {
			return Empty, 0, fmt.Errorf("%w: unknown promoted piece %c", ErrUnknownPiece, runes[1])
		}
		return base | Promoted, 2, nil
	default:
		base, ok := basePiece(runes[0])
		if !ok {
			return Empty, 0, fmt.Errorf("%w: %c", ErrUnknownPiece, runes[0])
		}
		return base, 1, nil
	}
}

func promotedBase(r rune) (Piece, bool) {
	switch r {
	case '銀':
		return BSilver, true
	case '桂':
		return BKnight, true
	case '香':
		return BLance, true
	case '歩':
		return BPawn, true
	default:
		return Empty, false
	}
}

func basePiece(r rune) (Piece, bool) {
	switch r {
	case '歩':
		return BPawn, true
	case '香':
		return BLance, true
	case '桂':
		return BKnight, true
	case '銀':
		return BSilver, true
	case '金':
		return BGold, true
	case '角':
		return BBishop, true
	case '飛':
		return BRook, true
	case '玉', '王':
		return BKing, true
	default:
		return Empty, false
	}
}

// ParseKIFHand reads the pieces in hand of owner from a KIF line such as
// "後手の持駒：飛　歩十二" or from its text after the colon. The result is
// keyed by owner's piece values.
func ParseKIFHand(text string, owner Color) (map[Piece]int, error) {
	if !owner.IsOk() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOwner, int(owner))
	}
	if i := strings.IndexAny(text, "：:"); i >= 0 {
		_, size := utf8.DecodeRuneInString(text[i:])
		text = text[i+size:]
	}
	text = strings.Trim(text, " \t　")
	counts := make(map[Piece]int)
	if text == "" || text == "なし" {
		return counts, nil
	}
	runes := []rune(text)
	for i := 0; i < len(runes); {
		r := runes[i]
		if r == ' ' || r == '\t' || r == '　' {
			i++
			continue
		}
		kind, ok := basePiece(r)
		if !ok || kind == BKing {
			return nil, fmt.Errorf("%w: hand piece %c", ErrUnknownPiece, r)
		}
		count, consumed := parseCount(runes[i+1:])
		if consumed == 0 {
			count = 1
		}
		counts[MakePiece(owner, kind)] += count
		i += 1 + consumed
	}
	return counts, nil
}

// FormatKIFHand writes owner's pieces in hand in KIF style, strongest piece
// first. An empty hand is "なし".
func FormatKIFHand(counts map[Piece]int, owner Color) string {
	var parts []string
	for _, kind := range HandKinds {
		count := counts[MakePiece(owner, kind)]
		if count <= 0 {
			continue
		}
		part := kind.Glyph()
		if count > 1 {
			part += kanjiNumber(count)
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return "なし"
	}
	return strings.Join(parts, "　")
}

var kanjiDigits = []rune("一二三四五六七八九")

func kanjiNumber(n int) string {
	switch {
	case n < 10:
		return string(kanjiDigits[n-1])
	case n == 10:
		return "十"
	case n < 20:
		return "十" + string(kanjiDigits[n-11])
	default:
		return fmt.Sprintf("%d", n)
	}
}

func parseCount(runes []rune) (int, int) {
	if len(runes) == 0 {
		return 0, 0
	}
	if runes[0] >= '0' && runes[0] <= '9' {
		val := 0
		i := 0
		for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
			val = val*10 + int(runes[i]-'0')
			i++
		}
		return val, i
	}
	if runes[0] == '十' {
		if len(runes) > 1 {
			if n, ok := japaneseNumber(runes[1]); ok {
				return 10 + n, 2
			}
		}
		return 10, 1
	}
	if n, ok := japaneseNumber(runes[0]); ok {
		return n, 1
	}
	return 0, 0
}

func japaneseNumber(r rune) (int, bool) {
	for i, digit := range kanjiDigits {
		if r == digit {
			return i + 1, true
		}
	}
	return 0, false
}
