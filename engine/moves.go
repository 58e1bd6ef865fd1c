// moves.go parses moves arriving over the wire in the compact
// algebraic format: source square, destination square and an optional
// promotion letter, e.g. e2e4 or e7e8q.

package engine

import "fmt"

// UCIToMove parses a move in wire format against the current position.
// The returned move is structurally sound but not necessarily legal;
// legality is checked by Apply.
func (pos *Position) UCIToMove(s string) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NullMove, fmt.Errorf("%w: move %q", ErrMalformedNotation, s)
	}

	from, err := SquareFromString(s[0:2])
	if err != nil {
		return NullMove, err
	}
	to, err := SquareFromString(s[2:4])
	if err != nil {
		return NullMove, err
	}

	pi := pos.Get(from)
	if pi == NoPiece || pi.Color() != pos.Us() {
		return NullMove, fmt.Errorf("%w: no %v piece on %v", ErrIllegalMove, pos.Us(), from)
	}

	moveType := Normal
	capture := pos.Get(to)
	target := pi

	if pi.Figure() == Pawn && pos.IsEnpassantSquare(to) {
		moveType = Enpassant
		capture = ColorFigure(pos.Them(), Pawn)
	}
	if pi == WhiteKing && from == SquareE1 && (to == SquareC1 || to == SquareG1) {
		moveType = Castling
	}
	if pi == BlackKing && from == SquareE8 && (to == SquareC8 || to == SquareG8) {
		moveType = Castling
	}
	if pi.Figure() == Pawn && (to.Rank() == 0 || to.Rank() == 7) {
		if len(s) != 5 {
			return NullMove, fmt.Errorf("%w: promotion %q needs a piece letter", ErrMalformedNotation, s)
		}
		promo, ok := symbolToPiece[s[4]]
		if !ok || promo.Figure() == Pawn || promo.Figure() == King {
			return NullMove, fmt.Errorf("%w: bad promotion letter %q", ErrMalformedNotation, string(s[4]))
		}
		moveType = Promotion
		target = ColorFigure(pos.Us(), promo.Figure())
	} else if len(s) == 5 {
		return NullMove, fmt.Errorf("%w: unexpected promotion letter in %q", ErrMalformedNotation, s)
	}

	return MakeMove(moveType, from, to, capture, target), nil
}
