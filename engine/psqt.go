// Copyright 2024 The yoki authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// psqt.go defines the material values and piece-square tables and
// combines them into the per-piece tables driving the incremental
// evaluation accumulator.

package engine

// Score is a pair of middle game and end game values in centipawns.
type Score struct {
	M, E int32
}

// Accum is a running sum of scores.
type Accum struct {
	M, E int32
}

func (a *Accum) add(s Score) {
	a.M += s.M
	a.E += s.E
}

func (a *Accum) addN(s Score, n int32) {
	a.M += s.M * n
	a.E += s.E * n
}

func (a *Accum) sub(s Score) {
	a.M -= s.M
	a.E -= s.E
}

func (a *Accum) merge(o Accum) {
	a.M += o.M
	a.E += o.E
}

func (a *Accum) deduct(o Accum) {
	a.M -= o.M
	a.E -= o.E
}

// figureBonus is the material value of each figure.
var figureBonus = [FigureArraySize]Score{
	Pawn:   {100, 100},
	Knight: {320, 320},
	Bishop: {330, 330},
	Rook:   {500, 500},
	Queen:  {900, 900},
	King:   {20000, 20000},
}

// figurePhase weights the contribution of each figure to the game
// phase. Kings and pawns do not count.
var figurePhase = [FigureArraySize]int32{
	Knight: 1,
	Bishop: 1,
	Rook:   2,
	Queen:  4,
}

// totalPhase is the phase value with all minor and major pieces on the
// board. A phase of totalPhase means pure middle game, 0 (kings and pawns
// only) pure end game; phaseScore rescales it to an end game weight in
// 0..256.
const totalPhase = 4*1 + 4*1 + 4*2 + 2*4

// The piece-square tables, viewed from White's side with the eighth
// rank first, so index 0 is a8 and index 63 is h1.

var pawnTable = [SquareArraySize]int32{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightTable = [SquareArraySize]int32{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopTable = [SquareArraySize]int32{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookTable = [SquareArraySize]int32{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var queenTable = [SquareArraySize]int32{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var kingMidgameTable = [SquareArraySize]int32{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

var kingEndgameTable = [SquareArraySize]int32{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

// psqt[fig][sq] is the positional bonus of a White fig on sq for both
// phases. The source tables list the eighth rank first so White squares
// are mirrored; only the king has a distinct end game table.
var psqt [FigureArraySize][SquareArraySize]Score

// pcsq[pi][sq] is material plus positional value of piece pi on sq,
// signed so White adds and Black subtracts. Summing pcsq over all
// pieces yields the accumulator maintained by Position.
var pcsq [PieceArraySize][SquareArraySize]Score

func init() {
	mid := [FigureArraySize]*[SquareArraySize]int32{
		Pawn:   &pawnTable,
		Knight: &knightTable,
		Bishop: &bishopTable,
		Rook:   &rookTable,
		Queen:  &queenTable,
		King:   &kingMidgameTable,
	}
	for fig := FigureMinValue; fig <= FigureMaxValue; fig++ {
		for sq := SquareMinValue; sq <= SquareMaxValue; sq++ {
			m := mid[fig][sq.Mirror()]
			e := m
			if fig == King {
				e = kingEndgameTable[sq.Mirror()]
			}
			psqt[fig][sq] = Score{M: m, E: e}
		}
	}

	for fig := FigureMinValue; fig <= FigureMaxValue; fig++ {
		for sq := SquareMinValue; sq <= SquareMaxValue; sq++ {
			w := psqt[fig][sq]
			b := psqt[fig][sq.Mirror()]
			bonus := figureBonus[fig]
			pcsq[ColorFigure(White, fig)][sq] = Score{
				M: bonus.M + w.M,
				E: bonus.E + w.E,
			}
			pcsq[ColorFigure(Black, fig)][sq] = Score{
				M: -(bonus.M + b.M),
				E: -(bonus.E + b.E),
			}
		}
	}
}
