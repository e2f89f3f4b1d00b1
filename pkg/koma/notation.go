package koma

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// displayTable holds the board cell text of every packed value: a half-width
// owner marker ('v' for White) followed by the kanji glyph.
var displayTable = [PieceNone]string{
	" ・", " 歩", " 香", " 桂", " 銀", " 角", " 飛", " 金",
	" 玉", " と", " 杏", " 圭", " 全", " 馬", " 龍", " ？",
	"v？", "v歩", "v香", "v桂", "v銀", "v角", "v飛", "v金",
	"v玉", "vと", "v杏", "v圭", "v全", "v馬", "v龍", "v？",
}

const invalidDisplay = " ？"

// usiTable is laid out like displayTable with two bytes per value, padded
// with trailing blanks.
const usiTable = "" +
	". P L N S B R G " +
	"K +P+L+N+S+B+R??" +
	"??p l n s b r g " +
	"k +p+l+n+s+b+r??"

const usiLetters = "PLNSBRGK"

var usiLetterPieces = [len(usiLetters)]Piece{BPawn, BLance, BKnight, BSilver, BBishop, BRook, BGold, BKing}

// Pretty returns the two-character board cell text of p.
func (p Piece) Pretty() string {
	if !p.IsOk() {
		return invalidDisplay
	}
	return displayTable[p]
}

// Glyph returns the kanji of p without the owner marker, as used for pieces
// in hand.
func (p Piece) Glyph() string {
	pretty := p.Pretty()
	_, size := utf8.DecodeRuneInString(pretty)
	return pretty[size:]
}

// USI returns the USI/SFEN notation of p: "." for Empty, an upper-case letter
// for Black, lower-case for White, prefixed by '+' when promoted. Values
// outside the piece range give "??".
func (p Piece) USI() string {
	if !p.IsOk() {
		return "??"
	}
	return strings.TrimRight(usiTable[2*p:2*p+2], " ")
}

func (p Piece) String() string {
	return p.USI()
}

// FromUSIChar maps a single USI piece letter to Black's unpromoted piece for
// upper case and White's for lower case. Anything else yields Empty. The '+'
// prefix is not handled here; see ParseUSI.
func FromUSIChar(c byte) Piece {
	upper := c
	if 'a' <= c && c <= 'z' {
		upper = c - 'a' + 'A'
	}
	i := strings.IndexByte(usiLetters, upper)
	if i < 0 {
		return Empty
	}
	if upper != c {
		return MakePiece(White, usiLetterPieces[i])
	}
	return usiLetterPieces[i]
}

// ParseUSI parses a full USI piece token such as "P", "+b" or ".".
func ParseUSI(token string) (Piece, error) {
	if token == "." {
		return Empty, nil
	}
	body := strings.TrimPrefix(token, "+")
	promote := len(body) != len(token)
	if len(body) != 1 {
		return Empty, fmt.Errorf("%w: %q", ErrUnknownPiece, token)
	}
	p := FromUSIChar(body[0])
	if p == Empty {
		return Empty, fmt.Errorf("%w: %q", ErrUnknownPiece, token)
	}
	if promote {
		if !p.IsPromotable() {
			return Empty, fmt.Errorf("%w: %q", ErrNotPromotable, token)
		}
		p = p.Promote()
	}
	return p, nil
}
