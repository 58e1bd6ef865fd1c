// Copyright 2024 The yoki authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// see.go implements static exchange evaluation, the swap algorithm
// deciding whether a sequence of captures on one square wins material.
//
// https://chessprogramming.wikispaces.com/SEE+-+The+Swap+Algorithm

package engine

// seeBonus are the figure values used during the exchange, fixed to
// roughly the middle game material values.
var seeBonus = [FigureArraySize]int32{0, 100, 320, 330, 500, 900, 20000}

func seeScore(m Move) int32 {
	score := seeBonus[m.Capture.Figure()]
	if m.Kind == Promotion {
		score -= seeBonus[Pawn]
		score += seeBonus[m.Target.Figure()]
	}
	return score
}

// seeSign returns true if see(m) < 0, with a fast path for captures by
// a piece at most as valuable as the victim.
func seeSign(pos *Position, m Move) bool {
	if m.Piece().Figure() <= m.Capture.Figure() {
		// Even if the mover is recaptured the exchange is not losing.
		return false
	}
	return see(pos, m) < 0
}

// see returns the static exchange evaluation of m in the current
// position, before m is executed. Each side keeps capturing on the
// destination square with its least valuable attacker as long as the
// exchange might still pay off.
func see(pos *Position, m Move) int32 {
	us := pos.Us()
	sq := m.To
	bb := sq.Bitboard()
	target := m.Target
	bb27 := bb &^ (BbRank1 | BbRank8)
	bb18 := bb & (BbRank1 | BbRank8)

	var occ [ColorArraySize]Bitboard
	occ[White] = pos.ByColor[White]
	occ[Black] = pos.ByColor[Black]

	// Occupancy as if the move was executed.
	occ[us] = occ[us]&^m.From.Bitboard() | bb
	occ[us.Opposite()] &^= m.CaptureSquare().Bitboard()
	us = us.Opposite()

	all := occ[White] | occ[Black]

	score := seeScore(m)
	var tmp [16]int32
	tmp[0] = score
	gain := tmp[:1]

	for score >= 0 {
		var fig Figure
		var att Bitboard
		var pawn, bishop, rook Bitboard

		ours := occ[us]
		mt := Normal

		// Try each figure in order of value.
		pawn = Backward(us, West(bb27)|East(bb27))
		if att = pawn & ours & pos.ByFigure[Pawn]; att != 0 {
			fig = Pawn
			goto makeMove
		}

		if att = bbKnightAttack[sq] & ours & pos.ByFigure[Knight]; att != 0 {
			fig = Knight
			goto makeMove
		}

		if bbSuperAttack[sq]&ours == 0 {
			// No remaining piece can possibly attack sq.
			break
		}

		bishop = BishopAttacks(sq, all)
		if att = bishop & ours & pos.ByFigure[Bishop]; att != 0 {
			fig = Bishop
			goto makeMove
		}

		rook = RookAttacks(sq, all)
		if att = rook & ours & pos.ByFigure[Rook]; att != 0 {
			fig = Rook
			goto makeMove
		}

		// Capturing promotions count as a queen minus the pawn.
		pawn = Backward(us, West(bb18)|East(bb18))
		if att = pawn & ours & pos.ByFigure[Pawn]; att != 0 {
			fig, mt = Queen, Promotion
			goto makeMove
		}

		if att = (rook | bishop) & ours & pos.ByFigure[Queen]; att != 0 {
			fig = Queen
			goto makeMove
		}

		if att = bbKingAttack[sq] & ours & pos.ByFigure[King]; att != 0 {
			fig = King
			goto makeMove
		}

		break

	makeMove:
		// Make a pseudo-legal capture with the smallest attacker.
		from := att.LSB()
		attacker := ColorFigure(us, fig)
		next := MakeMove(mt, from.AsSquare(), sq, target, attacker)
		target = attacker

		score = seeScore(next) - score
		gain = append(gain, score)

		occ[us] &^= from
		all &^= from
		us = us.Opposite()
	}

	for i := len(gain) - 2; i >= 0; i-- {
		if -gain[i+1] < gain[i] {
			gain[i] = -gain[i+1]
		}
	}
	return gain[0]
}
