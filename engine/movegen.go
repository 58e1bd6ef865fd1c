// movegen.go implements bulk move generation. Moves are generated
// pseudo-legally per figure from the attack tables, then filtered with
// check and pin masks computed once per position, so legality is a set
// membership test rather than a make/undo round trip. The only
// exceptions are king moves, which are validated on the occupancy with
// the king removed to catch slider x-rays, and en passant captures,
// which are validated by simulating the resulting occupancy.

package engine

const (
	// Quiet selects moves with no capture, castling or promotion.
	Quiet int = 1 << iota
	// Tactical selects castling and underpromotions (including captures).
	Tactical
	// Violent selects captures and queen promotions.
	Violent
	// All selects all moves.
	All = Quiet | Tactical | Violent
)

// legality caches the masks legalizing moves of the side to move.
type legality struct {
	kingSq   Square
	checkers Bitboard
	// checkMask is the full board when not in check; under single
	// check the checker and the squares blocking it; empty under
	// double check, when only king moves help.
	checkMask Bitboard
	// pinned are the side to move's pieces that may only move along
	// the line between the king and the pinning slider.
	pinned Bitboard
}

// legalityInfo computes the check and pin masks for the side to move.
func (pos *Position) legalityInfo() legality {
	us, them := pos.Us(), pos.Them()
	all := pos.All()
	kingSq := pos.KingSquare(us)

	l := legality{kingSq: kingSq}
	l.checkers = pos.attackersTo(kingSq, them, all)
	switch l.checkers.CountMax2() {
	case 0:
		l.checkMask = BbFull
	case 1:
		checker := l.checkers.AsSquare()
		l.checkMask = l.checkers | bbBetween[kingSq][checker]
	default:
		l.checkMask = BbEmpty
	}

	// A friendly piece alone between the king and an enemy slider is
	// pinned to the slider's line.
	theirRooks := pos.ByPiece(them, Rook) | pos.ByPiece(them, Queen)
	theirBishops := pos.ByPiece(them, Bishop) | pos.ByPiece(them, Queen)
	for bb := theirRooks&bbRookRays[kingSq] | theirBishops&bbBishopRays[kingSq]; bb != 0; {
		slider := bb.Pop()
		between := bbBetween[kingSq][slider] & all
		if between.CountMax2() == 1 && between&pos.ByColor[us] != 0 {
			l.pinned |= between
		}
	}
	return l
}

// isLegalGenerated decides whether a pseudo-legal move of the side to
// move is legal under the precomputed masks.
func (pos *Position) isLegalGenerated(m Move, l legality) bool {
	them := pos.Them()

	if m.Piece().Figure() == King {
		if m.Kind == Castling {
			// The castle generator verified the empty and attacked
			// squares already, including the king's own.
			return true
		}
		// Validate on the occupancy without the king so a slider
		// checking through the king keeps attacking the retreat square.
		occ := pos.All()&^m.From.Bitboard() | m.To.Bitboard()
		return pos.attackersTo(m.To, them, occ) == 0
	}

	if m.Kind == Enpassant {
		// Simulate the capture: both pawns leave their squares, which
		// can discover a rank or diagonal attack on the king.
		occ := pos.All() &^ m.From.Bitboard() &^ m.CaptureSquare().Bitboard() | m.To.Bitboard()
		return pos.attackersTo(l.kingSq, them, occ)&^m.CaptureSquare().Bitboard() == 0
	}

	if !l.checkMask.Has(m.To) {
		return false
	}
	if l.pinned.Has(m.From) && !bbLine[l.kingSq][m.From].Has(m.To) {
		return false
	}
	return true
}

// GenerateMoves appends to moves all legal moves of the side to move.
// kind is a combination of Quiet, Tactical and Violent.
func (pos *Position) GenerateMoves(kind int, moves *[]Move) {
	l := pos.legalityInfo()

	start := len(*moves)
	if l.checkMask == BbEmpty {
		// Double check, only the king can move.
		pos.genKingMovesNear(kind, moves)
	} else {
		pos.genKingMovesNear(kind, moves)
		pos.genPawnDoubleAdvanceMoves(kind, moves)
		pos.genRookMoves(Rook, kind, moves)
		pos.genBishopMoves(Queen, kind, moves)
		pos.genPawnAttackMoves(kind, moves)
		pos.genPawnAdvanceMoves(kind, moves)
		pos.genPawnPromotions(kind, moves)
		pos.genKnightMoves(kind, moves)
		pos.genBishopMoves(Bishop, kind, moves)
		if l.checkers == 0 {
			pos.genKingCastles(kind, moves)
		}
		pos.genRookMoves(Queen, kind, moves)
	}

	// Filter in place.
	keep := start
	for i := start; i < len(*moves); i++ {
		if pos.isLegalGenerated((*moves)[i], l) {
			(*moves)[keep] = (*moves)[i]
			keep++
		}
	}
	*moves = (*moves)[:keep]
}

// GenerateFigureMoves appends the legal moves of one figure.
func (pos *Position) GenerateFigureMoves(fig Figure, kind int, moves *[]Move) {
	l := pos.legalityInfo()
	start := len(*moves)
	switch fig {
	case Pawn:
		pos.genPawnAdvanceMoves(kind, moves)
		pos.genPawnAttackMoves(kind, moves)
		pos.genPawnDoubleAdvanceMoves(kind, moves)
		pos.genPawnPromotions(kind, moves)
	case Knight:
		pos.genKnightMoves(kind, moves)
	case Bishop:
		pos.genBishopMoves(Bishop, kind, moves)
	case Rook:
		pos.genRookMoves(Rook, kind, moves)
	case Queen:
		pos.genBishopMoves(Queen, kind, moves)
		pos.genRookMoves(Queen, kind, moves)
	case King:
		pos.genKingMovesNear(kind, moves)
		if l.checkers == 0 {
			pos.genKingCastles(kind, moves)
		}
	}
	if l.checkMask == BbEmpty && fig != King {
		*moves = (*moves)[:start]
		return
	}

	keep := start
	for i := start; i < len(*moves); i++ {
		if pos.isLegalGenerated((*moves)[i], l) {
			(*moves)[keep] = (*moves)[i]
			keep++
		}
	}
	*moves = (*moves)[:keep]
}

// isLegalMove reports whether m is legal in the current position, used
// to validate moves arriving over the boundary and cached table moves.
func (pos *Position) isLegalMove(m Move) bool {
	if m == NullMove {
		return false
	}
	var moves []Move
	pos.GenerateMoves(All, &moves)
	for _, pm := range moves {
		if pm == m {
			return true
		}
	}
	return false
}

// HasLegalMoves returns true if the side to move has at least one move.
func (pos *Position) HasLegalMoves() bool {
	var moves []Move
	pos.GenerateMoves(All, &moves)
	return len(moves) != 0
}

// getMask returns the destination mask selecting kind moves.
func (pos *Position) getMask(kind int) Bitboard {
	mask := Bitboard(0)
	if kind&Violent != 0 {
		// All captures. Promotions are handled specially.
		mask |= pos.ByColor[pos.Them()]
	}
	if kind&Quiet != 0 {
		mask |= ^pos.All()
	}
	return mask
}

func (pos *Position) genBitboardMoves(pi Piece, from Square, att Bitboard, moves *[]Move) {
	for att != 0 {
		to := att.Pop()
		*moves = append(*moves, MakeMove(Normal, from, to, pos.Get(to), pi))
	}
}

// genPawnPromotions generates pawn promotions, both advancing and
// capturing. Emits four moves per destination: queen for Violent,
// knight to rook for Tactical.
func (pos *Position) genPawnPromotions(kind int, moves *[]Move) {
	if kind&(Violent|Tactical) == 0 {
		return
	}

	pMin, pMax := Queen, Rook
	if kind&Violent != 0 {
		pMax = Queen
	}
	if kind&Tactical != 0 {
		pMin = Knight
	}

	us, them := pos.Us(), pos.Them()
	all := pos.All()
	theirs := pos.ByColor[them]

	ours := pos.ByPiece(us, Pawn)
	var forward Square
	if us == White {
		ours &= BbRank7
		forward = RankFile(+1, 0)
	} else {
		ours &= BbRank2
		forward = RankFile(-1, 0)
	}

	for ours != 0 {
		from := ours.Pop()
		to := from + forward

		if !all.Has(to) { // advance
			for p := pMin; p <= pMax; p++ {
				*moves = append(*moves, MakeMove(Promotion, from, to, NoPiece, ColorFigure(us, p)))
			}
		}
		for att := bbPawnAttack[us][from] & theirs; att != 0; { // captures
			capSq := att.Pop()
			capt := pos.Get(capSq)
			for p := pMin; p <= pMax; p++ {
				*moves = append(*moves, MakeMove(Promotion, from, capSq, capt, ColorFigure(us, p)))
			}
		}
	}
}

// genPawnAdvanceMoves moves pawns one square, no promotions.
func (pos *Position) genPawnAdvanceMoves(kind int, moves *[]Move) {
	if kind&Quiet == 0 {
		return
	}

	us := pos.Us()
	ours := pos.ByPiece(us, Pawn)
	occu := pos.All()
	pawn := ColorFigure(us, Pawn)

	var forward Square
	if us == White {
		ours = ours &^ South(occu) &^ BbRank7
		forward = RankFile(+1, 0)
	} else {
		ours = ours &^ North(occu) &^ BbRank2
		forward = RankFile(-1, 0)
	}

	for ours != 0 {
		from := ours.Pop()
		*moves = append(*moves, MakeMove(Normal, from, from+forward, NoPiece, pawn))
	}
}

// genPawnDoubleAdvanceMoves moves pawns two squares.
func (pos *Position) genPawnDoubleAdvanceMoves(kind int, moves *[]Move) {
	if kind&Quiet == 0 {
		return
	}

	us := pos.Us()
	ours := pos.ByPiece(us, Pawn)
	occu := pos.All()
	pawn := ColorFigure(us, Pawn)

	var forward Square
	if us == White {
		ours &= RankBb(1) &^ South(occu) &^ South(South(occu))
		forward = RankFile(+2, 0)
	} else {
		ours &= RankBb(6) &^ North(occu) &^ North(North(occu))
		forward = RankFile(-2, 0)
	}

	for ours != 0 {
		from := ours.Pop()
		*moves = append(*moves, MakeMove(Normal, from, from+forward, NoPiece, pawn))
	}
}

// genPawnAttackMoves generates pawn captures, including en passant but
// not promotions.
func (pos *Position) genPawnAttackMoves(kind int, moves *[]Move) {
	if kind&Violent == 0 {
		return
	}

	us, them := pos.Us(), pos.Them()
	theirs := pos.ByColor[them]
	enpassant := BbEmpty
	if ep := pos.curr.enpassant[0]; ep != SquareA1 {
		enpassant = ep.Bitboard()
	}

	pawn := ColorFigure(us, Pawn)
	ours := pos.ByPiece(us, Pawn)
	if us == White {
		ours &^= BbRank7
	} else {
		ours &^= BbRank2
	}

	for ours != 0 {
		from := ours.Pop()
		for att := bbPawnAttack[us][from] & (theirs | enpassant); att != 0; {
			to := att.Pop()
			if enpassant.Has(to) {
				*moves = append(*moves, MakeMove(Enpassant, from, to, ColorFigure(them, Pawn), pawn))
			} else {
				*moves = append(*moves, MakeMove(Normal, from, to, pos.Get(to), pawn))
			}
		}
	}
}

func (pos *Position) genKnightMoves(kind int, moves *[]Move) {
	mask := pos.getMask(kind)
	pi := ColorFigure(pos.Us(), Knight)
	for bb := pos.ByPiece(pos.Us(), Knight); bb != 0; {
		from := bb.Pop()
		pos.genBitboardMoves(pi, from, bbKnightAttack[from]&mask, moves)
	}
}

func (pos *Position) genBishopMoves(fig Figure, kind int, moves *[]Move) {
	mask := pos.getMask(kind)
	pi := ColorFigure(pos.Us(), fig)
	ref := pos.All()
	for bb := pos.ByPiece(pos.Us(), fig); bb != 0; {
		from := bb.Pop()
		pos.genBitboardMoves(pi, from, BishopAttacks(from, ref)&mask, moves)
	}
}

func (pos *Position) genRookMoves(fig Figure, kind int, moves *[]Move) {
	mask := pos.getMask(kind)
	pi := ColorFigure(pos.Us(), fig)
	ref := pos.All()
	for bb := pos.ByPiece(pos.Us(), fig); bb != 0; {
		from := bb.Pop()
		pos.genBitboardMoves(pi, from, RookAttacks(from, ref)&mask, moves)
	}
}

func (pos *Position) genKingMovesNear(kind int, moves *[]Move) {
	mask := pos.getMask(kind)
	pi := ColorFigure(pos.Us(), King)
	from := pos.KingSquare(pos.Us())
	pos.genBitboardMoves(pi, from, bbKingAttack[from]&mask, moves)
}

// genKingCastles generates castling moves. All conditions are verified
// here: rights present, squares between king and rook empty, and the
// king's source, transit and destination squares not attacked.
func (pos *Position) genKingCastles(kind int, moves *[]Move) {
	if kind&Tactical == 0 {
		return
	}

	us := pos.Us()
	rank := us.KingHomeRank()
	oo, ooo := WhiteOO, WhiteOOO
	if us == Black {
		oo, ooo = BlackOO, BlackOOO
	}

	// King side.
	if pos.curr.castle&oo != 0 {
		r5 := RankFile(rank, 5)
		r6 := RankFile(rank, 6)
		if !pos.IsEmpty(r5) || !pos.IsEmpty(r6) {
			goto EndCastleOO
		}

		{
			r4 := RankFile(rank, 4)
			them := us.Opposite()
			if pos.IsAttackedBy(r4, them) ||
				pos.IsAttackedBy(r5, them) ||
				pos.IsAttackedBy(r6, them) {
				goto EndCastleOO
			}
			*moves = append(*moves, MakeMove(Castling, r4, r6, NoPiece, ColorFigure(us, King)))
		}
	}
EndCastleOO:

	// Queen side.
	if pos.curr.castle&ooo != 0 {
		r3 := RankFile(rank, 3)
		r2 := RankFile(rank, 2)
		r1 := RankFile(rank, 1)
		if !pos.IsEmpty(r3) || !pos.IsEmpty(r2) || !pos.IsEmpty(r1) {
			goto EndCastleOOO
		}

		{
			r4 := RankFile(rank, 4)
			them := us.Opposite()
			if pos.IsAttackedBy(r4, them) ||
				pos.IsAttackedBy(r3, them) ||
				pos.IsAttackedBy(r2, them) {
				goto EndCastleOOO
			}
			*moves = append(*moves, MakeMove(Castling, r4, r2, NoPiece, ColorFigure(us, King)))
		}
	}
EndCastleOOO:
}
