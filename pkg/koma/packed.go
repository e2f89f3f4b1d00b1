package koma

import "fmt"

// PackedBits is the size of a packed position stream.
const PackedBits = 256

// Packed256 is a packed position: side to move, both king squares, then the
// huffman code of every other board square and every piece in hand.
type Packed256 struct {
	Words [4]uint64
}

// BitWriter appends bits, least significant first, to a Packed256.
type BitWriter struct {
	words [4]uint64
	pos   int
}

// BitReader consumes bits in the order a BitWriter wrote them.
type BitReader struct {
	words [4]uint64
	pos   int
}

type codeEntry struct {
	kind    Piece
	bits    uint64
	bitLen  int
	isEmpty bool
}

type codeBook struct {
	byKind map[Piece]codeEntry
	byLen  map[int]map[uint64]codeEntry
	maxLen int
}

var boardCodes = []codeEntry{
	{kind: Empty, bits: 0b0, bitLen: 1, isEmpty: true},
	{kind: BPawn, bits: 0b01, bitLen: 2},
	{kind: BLance, bits: 0b0011, bitLen: 4},
	{kind: BKnight, bits: 0b1011, bitLen: 4},
	{kind: BSilver, bits: 0b0111, bitLen: 4},
	{kind: BGold, bits: 0b01111, bitLen: 5},
	{kind: BBishop, bits: 0b011111, bitLen: 6},
	{kind: BRook, bits: 0b111111, bitLen: 6},
}

var handCodes = []codeEntry{
	{kind: BPawn, bits: 0b0, bitLen: 1},
	{kind: BLance, bits: 0b001, bitLen: 3},
	{kind: BKnight, bits: 0b101, bitLen: 3},
	{kind: BSilver, bits: 0b011, bitLen: 3},
	{kind: BGold, bits: 0b0111, bitLen: 4},
	{kind: BBishop, bits: 0b01111, bitLen: 5},
	{kind: BRook, bits: 0b11111, bitLen: 5},
}

var boardCodeBook = buildCodeBook(boardCodes)
var handCodeBook = buildCodeBook(handCodes)

func buildCodeBook(codes []codeEntry) codeBook {
	book := codeBook{
		byKind: map[Piece]codeEntry{},
		byLen:  map[int]map[uint64]codeEntry{},
	}
	for _, code := range codes {
		book.byKind[code.kind] = code
		if book.byLen[code.bitLen] == nil {
			book.byLen[code.bitLen] = map[uint64]codeEntry{}
		}
		book.byLen[code.bitLen][code.bits] = code
		if code.bitLen > book.maxLen {
			book.maxLen = code.bitLen
		}
	}
	return book
}

// PackedCode returns the huffman code of p's kind on the board or in hand,
// without the owner and promotion bits that follow it.
func PackedCode(p Piece, inHand bool) (uint64, int, error) {
	if !p.IsOk() {
		return 0, 0, fmt.Errorf("%w: value %d", ErrNotEncodable, int(p))
	}
	book := boardCodeBook
	if inHand {
		book = handCodeBook
	}
	kind := p.KindIgnoringOwner()
	if kind == BKing || kind == BQueen || p == WEmpty {
		return 0, 0, fmt.Errorf("%w: %s", ErrNotEncodable, p.USI())
	}
	if inHand && kind.IsPromoted() {
		return 0, 0, fmt.Errorf("%w: promoted piece in hand: %s", ErrNotEncodable, p.USI())
	}
	code, ok := book.byKind[kind.RawKind()]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", ErrNotEncodable, p.USI())
	}
	return code.bits, code.bitLen, nil
}

// hasPromotionBit reports whether codes of this raw kind carry a promotion bit.
func hasPromotionBit(raw Piece) bool {
	return raw != BGold && raw != Empty
}

// WritePiece appends p: its code, then the owner bit, then the promotion bit
// for kinds that can promote. Kings are stored as squares by the caller and
// have no code.
func (w *BitWriter) WritePiece(p Piece, inHand bool) error {
	bits, bitLen, err := PackedCode(p, inHand)
	if err != nil {
		return err
	}
	if err := w.WriteBits(bits, bitLen); err != nil {
		return err
	}
	if p == Empty {
		return nil
	}
	if err := w.WriteColor(p.Owner()); err != nil {
		return err
	}
	if hasPromotionBit(p.RawKind()) {
		promoBit := uint64(0)
		if p.IsPromoted() {
			promoBit = 1
		}
		if err := w.WriteBit(promoBit); err != nil {
			return err
		}
	}
	return nil
}

func (w *BitWriter) WriteBit(bit uint64) error {
	if w.pos >= PackedBits {
		return ErrBitstreamOverflow
	}
	word := w.pos / 64
	offset := uint(w.pos % 64)
	if bit != 0 {
		w.words[word] |= 1 << offset
	}
	w.pos++
	return nil
}

func (w *BitWriter) WriteBits(value uint64, bitLen int) error {
	for i := 0; i < bitLen; i++ {
		bit := (value >> i) & 1
		if err := w.WriteBit(bit); err != nil {
			return err
		}
	}
	return nil
}

func (w *BitWriter) WriteColor(color Color) error {
	bit := uint64(0)
	if color == White {
		bit = 1
	}
	return w.WriteBit(bit)
}

// Len returns the number of bits written so far.
func (w *BitWriter) Len() int {
	return w.pos
}

// Packed returns the stream. It is an error unless exactly PackedBits bits
// were written.
func (w *BitWriter) Packed() (Packed256, error) {
	if w.pos != PackedBits {
		return Packed256{}, fmt.Errorf("packed length is %d bits, expected %d", w.pos, PackedBits)
	}
	return Packed256{Words: w.words}, nil
}

func NewBitReader(p Packed256) *BitReader {
	return &BitReader{words: p.Words}
}

// ReadPiece is the inverse of WritePiece.
func (r *BitReader) ReadPiece(inHand bool) (Piece, error) {
	book := boardCodeBook
	if inHand {
		book = handCodeBook
	}
	code, err := r.readCode(book)
	if err != nil {
		return Empty, err
	}
	if code.isEmpty {
		return Empty, nil
	}
	color, err := r.ReadColor()
	if err != nil {
		return Empty, err
	}
	p := MakePiece(color, code.kind)
	if hasPromotionBit(code.kind) {
		promoBit, err := r.ReadBit()
		if err != nil {
			return Empty, err
		}
		if promoBit == 1 {
			if inHand {
				return Empty, fmt.Errorf("%w: promoted piece in hand: %s", ErrInvalidCode, p.USI())
			}
			p = p.Promote()
		}
	}
	return p, nil
}

func (r *BitReader) ReadBit() (uint64, error) {
	if r.pos >= PackedBits {
		return 0, ErrBitstreamUnderflow
	}
	word := r.pos / 64
	offset := uint(r.pos % 64)
	bit := (r.words[word] >> offset) & 1
	r.pos++
	return bit, nil
}

func (r *BitReader) ReadBits(bitLen int) (uint64, error) {
	var value uint64
	for i := 0; i < bitLen; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		value |= bit << i
	}
	return value, nil
}

func (r *BitReader) ReadColor() (Color, error) {
	bit, err := r.ReadBit()
	if err != nil {
		return Black, err
	}
	if bit == 1 {
		return White, nil
	}
	return Black, nil
}

// Pos returns the number of bits consumed so far.
func (r *BitReader) Pos() int {
	return r.pos
}

func (r *BitReader) readCode(book codeBook) (codeEntry, error) {
	var value uint64
	for length := 1; length <= book.maxLen; length++ {
		bit, err := r.ReadBit()
		if err != nil {
			return codeEntry{}, err
		}
		value |= bit << (length - 1)
		if entry, ok := book.byLen[length][value]; ok {
			return entry, nil
		}
	}
	return codeEntry{}, ErrInvalidCode
}
