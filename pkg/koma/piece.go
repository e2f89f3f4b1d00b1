package koma

import "fmt"

// Color is the owner of a piece or the side to move.
type Color int

const (
	Black Color = iota // sente, moves first
	White              // gote
	ColorNum
)

func (c Color) IsOk() bool {
	return c == Black || c == White
}

func (c Color) Opposite() Color {
	return c ^ 1
}

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return fmt.Sprintf("color(%d)", int(c))
	}
}

// Piece packs a piece kind, its promotion state and its owner into five bits:
//
//	bits 0-2  raw kind (none, pawn, lance, knight, silver, bishop, rook, gold)
//	bit  3    promoted
//	bit  4    owned by White
//
// The king sits in the "promoted none" slot and the "promoted gold" slot is a
// reserved queen that no constructor returns.
type Piece int

const (
	Promoted Piece = 8
	WhiteBit Piece = 16

	rawMask  Piece = 7
	kindMask Piece = Promoted | rawMask
)

const (
	Empty Piece = iota
	BPawn
	BLance
	BKnight
	BSilver
	BBishop
	BRook
	BGold
	BKing
	BProPawn
	BProLance
	BProKnight
	BProSilver
	BHorse
	BDragon
	BQueen
	WEmpty
	WPawn
	WLance
	WKnight
	WSilver
	WBishop
	WRook
	WGold
	WKing
	WProPawn
	WProLance
	WProKnight
	WProSilver
	WHorse
	WDragon
	WQueen
	PieceNone
)

// IsOk reports whether p lies inside the packed value space.
func IsOk(p Piece) bool {
	return 0 <= p && p < PieceNone
}

func (p Piece) IsOk() bool {
	return IsOk(p)
}

func (p Piece) IsEmpty() bool {
	return p == Empty
}

// Owner returns White for values from WhiteBit up, which inside the table is
// the owner bit. Empty belongs to Black.
func (p Piece) Owner() Color {
	if p >= WhiteBit {
		return White
	}
	return Black
}

// KindIgnoringOwner returns the Black piece with the same kind and promotion.
func (p Piece) KindIgnoringOwner() Piece {
	return p & kindMask
}

// RawKind keeps only the three kind bits. A king yields Empty here because it
// is stored in the promoted half of the table, even though kings are often
// described as having a raw kind of their own. Use KindIgnoringOwner or Demote
// when the king must stay a king.
func (p Piece) RawKind() Piece {
	return p & rawMask
}

// IsPromoted reports the promotion bit. It is also set for kings; promotion
// decisions should go through IsPromotable.
func (p Piece) IsPromoted() bool {
	return p&Promoted != 0
}

// IsPromotable reports whether p is an unpromoted pawn, lance, knight,
// silver, bishop or rook of either side.
func (p Piece) IsPromotable() bool {
	if !p.IsOk() || p.IsPromoted() {
		return false
	}
	raw := p.RawKind()
	return BPawn <= raw && raw <= BRook
}

// FlipOwner hands p to the other side.
func (p Piece) FlipOwner() Piece {
	if p == Empty {
		return Empty
	}
	return p ^ WhiteBit
}

// Demote clears the promotion bit, leaving kings unchanged.
func (p Piece) Demote() Piece {
	if p.KindIgnoringOwner() == BKing {
		return p
	}
	return p &^ Promoted
}

// Promote sets the promotion bit. It panics if p cannot promote.
func (p Piece) Promote() Piece {
	if !p.IsPromotable() {
		panic(fmt.Sprintf("koma: Promote: piece %d cannot promote", int(p)))
	}
	return p | Promoted
}

// HandKind returns the Black unpromoted kind that a capture of p adds to the
// capturer's hand, or Empty for pieces that never go to hand.
func (p Piece) HandKind() Piece {
	if !p.IsOk() {
		return Empty
	}
	kind := p.KindIgnoringOwner()
	if kind == BKing || kind == BQueen {
		return Empty
	}
	return kind.RawKind()
}

// HandKinds lists the pieces that can be held in hand, in USI hand order.
var HandKinds = [...]Piece{BRook, BBishop, BGold, BSilver, BKnight, BLance, BPawn}

func isConstructible(kind Piece) bool {
	return (BPawn <= kind && kind <= BGold) || kind == BKing
}

func withOwner(owner Color, kind Piece) Piece {
	if owner == White {
		return kind | WhiteBit
	}
	return kind
}

// MakePiece builds owner's piece of the given Black unpromoted kind (pawn
// through gold, or king). Any other kind is a caller bug and panics.
func MakePiece(owner Color, kind Piece) Piece {
	if !owner.IsOk() {
		panic(fmt.Sprintf("koma: MakePiece: invalid owner %d", int(owner)))
	}
	if !isConstructible(kind) {
		panic(fmt.Sprintf("koma: MakePiece: invalid black kind %d", int(kind)))
	}
	return withOwner(owner, kind)
}

// MakePromotedPiece builds owner's promoted form of kind, which must be a
// Black unpromoted pawn, lance, knight, silver, bishop or rook.
func MakePromotedPiece(owner Color, kind Piece) Piece {
	if !owner.IsOk() {
		panic(fmt.Sprintf("koma: MakePromotedPiece: invalid owner %d", int(owner)))
	}
	if kind.Owner() != Black || !kind.IsPromotable() {
		panic(fmt.Sprintf("koma: MakePromotedPiece: invalid black kind %d", int(kind)))
	}
	return withOwner(owner, kind|Promoted)
}
