package koma

import "errors"

var (
	ErrUnknownPiece       = errors.New("unknown piece")
	ErrNotPromotable      = errors.New("piece cannot promote")
	ErrNotEncodable       = errors.New("piece has no packed code")
	ErrInvalidCode        = errors.New("invalid packed code")
	ErrBitstreamOverflow  = errors.New("bitstream overflow")
	ErrBitstreamUnderflow = errors.New("bitstream underflow")
	ErrInvalidOwner       = errors.New("invalid owner")
)
