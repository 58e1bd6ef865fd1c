// fen.go parses and formats positions in Forsyth-Edwards Notation.
// http://en.wikipedia.org/wiki/Forsyth%E2%80%93Edwards_Notation
//
// Parsing is strict: any structural defect is rejected with
// ErrMalformedNotation and no position is published.

package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// FENStartPos is the standard starting position.
const FENStartPos = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// PositionFromFEN parses fen and returns the position.
func PositionFromFEN(fen string) (*Position, error) {
	fld := strings.Fields(fen)
	if len(fld) != 6 {
		return nil, fmt.Errorf("%w: expected 6 fields, got %d", ErrMalformedNotation, len(fld))
	}

	pos := NewPosition()
	if err := parsePiecePlacement(fld[0], pos); err != nil {
		return nil, err
	}
	if err := parseSideToMove(fld[1], pos); err != nil {
		return nil, err
	}
	if err := parseCastlingAbility(fld[2], pos); err != nil {
		return nil, err
	}
	if err := parseEnpassantSquare(fld[3], pos); err != nil {
		return nil, err
	}

	halfMove, err := strconv.Atoi(fld[4])
	if err != nil || halfMove < 0 {
		return nil, fmt.Errorf("%w: bad halfmove clock %q", ErrMalformedNotation, fld[4])
	}
	pos.curr.halfMove = halfMove

	fullMove, err := strconv.Atoi(fld[5])
	if err != nil || fullMove < 1 {
		return nil, fmt.Errorf("%w: bad fullmove number %q", ErrMalformedNotation, fld[5])
	}
	pos.curr.fullMove = fullMove

	for col := ColorMinValue; col <= ColorMaxValue; col++ {
		if n := pos.ByPiece(col, King).Count(); n != 1 {
			return nil, fmt.Errorf("%w: %v has %d kings", ErrMalformedNotation, col, n)
		}
	}
	if pos.ByFigure[Pawn]&(BbRank1|BbRank8) != 0 {
		return nil, fmt.Errorf("%w: pawn on the first or eighth rank", ErrMalformedNotation)
	}
	if pos.InCheck(pos.Them()) {
		return nil, fmt.Errorf("%w: %v is in check but not to move", ErrMalformedNotation, pos.Them())
	}

	pos.resetAccum()
	return pos, nil
}

// String returns the position in FEN format.
func (pos *Position) String() string {
	s := formatPiecePlacement(pos)
	s += " " + formatSideToMove(pos)
	s += " " + pos.curr.castle.String()
	s += " " + formatEnpassantSquare(pos)
	s += " " + strconv.Itoa(pos.curr.halfMove)
	s += " " + strconv.Itoa(pos.curr.fullMove)
	return s
}

func parsePiecePlacement(field string, pos *Position) error {
	ranks := strings.Split(field, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: expected 8 ranks, got %d", ErrMalformedNotation, len(ranks))
	}
	for r := range ranks {
		f := 0
		lastWasDigit := false
		for i := 0; i < len(ranks[r]); i++ {
			ch := ranks[r][i]
			if '1' <= ch && ch <= '8' {
				if lastWasDigit {
					return fmt.Errorf("%w: consecutive empty runs in rank %q", ErrMalformedNotation, ranks[r])
				}
				lastWasDigit = true
				f += int(ch - '0')
				continue
			}
			lastWasDigit = false
			pi, ok := symbolToPiece[ch]
			if !ok || pi == NoPiece {
				return fmt.Errorf("%w: unknown piece symbol %q", ErrMalformedNotation, string(ch))
			}
			if f >= 8 {
				return fmt.Errorf("%w: rank %q overflows", ErrMalformedNotation, ranks[r])
			}
			pos.Put(RankFile(7-r, f), pi)
			f++
		}
		if f != 8 {
			return fmt.Errorf("%w: rank %q sums to %d, expected 8", ErrMalformedNotation, ranks[r], f)
		}
	}
	return nil
}

func formatPiecePlacement(pos *Position) string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		empty := 0
		for f := 0; f < 8; f++ {
			pi := pos.Get(RankFile(r, f))
			if pi == NoPiece {
				empty++
				continue
			}
			if empty != 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(pieceToSymbol[pi])
		}
		if empty != 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if r != 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

func parseSideToMove(field string, pos *Position) error {
	switch field {
	case "w":
		pos.setSideToMove(White)
	case "b":
		pos.setSideToMove(Black)
	default:
		return fmt.Errorf("%w: unknown side to move %q", ErrMalformedNotation, field)
	}
	return nil
}

func formatSideToMove(pos *Position) string {
	if pos.SideToMove == Black {
		return "b"
	}
	return "w"
}

// parseCastlingAbility parses the castling field. A right that does
// not match the board is a structural error, otherwise move generation
// could castle a phantom king.
func parseCastlingAbility(field string, pos *Position) error {
	if field == "-" {
		return nil
	}
	var castle Castle
	for i := 0; i < len(field); i++ {
		var right Castle
		switch field[i] {
		case 'K':
			right = WhiteOO
		case 'Q':
			right = WhiteOOO
		case 'k':
			right = BlackOO
		case 'q':
			right = BlackOOO
		default:
			return fmt.Errorf("%w: unknown castling right %q", ErrMalformedNotation, string(field[i]))
		}
		if castle&right != 0 {
			return fmt.Errorf("%w: duplicated castling right %q", ErrMalformedNotation, string(field[i]))
		}
		castle |= right
	}

	check := func(right Castle, king, rook Square, kingPi, rookPi Piece) error {
		if castle&right != 0 && (pos.Get(king) != kingPi || pos.Get(rook) != rookPi) {
			return fmt.Errorf("%w: castling right %v does not match the board", ErrMalformedNotation, right)
		}
		return nil
	}
	if err := check(WhiteOO, SquareE1, SquareH1, WhiteKing, WhiteRook); err != nil {
		return err
	}
	if err := check(WhiteOOO, SquareE1, SquareA1, WhiteKing, WhiteRook); err != nil {
		return err
	}
	if err := check(BlackOO, SquareE8, SquareH8, BlackKing, BlackRook); err != nil {
		return err
	}
	if err := check(BlackOOO, SquareE8, SquareA8, BlackKing, BlackRook); err != nil {
		return err
	}

	pos.setCastlingAbility(castle)
	return nil
}

func parseEnpassantSquare(field string, pos *Position) error {
	if field == "-" {
		return nil
	}
	sq, err := SquareFromString(field)
	if err != nil {
		return err
	}
	switch {
	case pos.SideToMove == White && sq.Rank() == 5:
	case pos.SideToMove == Black && sq.Rank() == 2:
	default:
		return fmt.Errorf("%w: en passant square %v does not match side to move", ErrMalformedNotation, sq)
	}
	pos.setEnpassantSquare(sq)
	return nil
}

func formatEnpassantSquare(pos *Position) string {
	if sq := pos.EnpassantSquare(); sq != SquareA1 {
		return sq.String()
	}
	return "-"
}
