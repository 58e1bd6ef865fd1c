// Copyright 2024 The yoki authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// search.go implements the searcher: iterative deepening with
// aspiration windows around a fail-soft alpha-beta negamax, quiescence
// search over the violent moves, and a transposition table. The search
// returns scores that may lie outside the (alpha, beta) window, i.e.
// fail-soft:
//
//   - if score <= alpha the search failed low and score is an upper bound,
//   - if score >= beta the search failed high and score is a lower bound,
//   - otherwise the score is exact.
//
// Features implemented on top of the plain negamax framework:
//
//   - Aspiration window - https://chessprogramming.wikispaces.com/Aspiration+Windows
//   - Check extension - https://chessprogramming.wikispaces.com/Check+Extensions
//   - Futility pruning - https://chessprogramming.wikispaces.com/Futility+pruning
//   - History leaf pruning - https://chessprogramming.wikispaces.com/History+Leaf+Pruning
//   - Killer move heuristic - https://chessprogramming.wikispaces.com/Killer+Heuristic
//   - Late move reduction (LMR) - https://chessprogramming.wikispaces.com/Late+Move+Reductions
//   - Mate distance pruning - https://chessprogramming.wikispaces.com/Mate+Distance+Pruning
//   - Null move pruning (NMP) - https://chessprogramming.wikispaces.com/Null+Move+Pruning
//   - Principal variation search (PVS) - https://chessprogramming.wikispaces.com/Principal+Variation+Search
//   - Quiescence search - https://chessprogramming.wikispaces.com/Quiescence+Search
//   - Static exchange evaluation - https://chessprogramming.wikispaces.com/Static+Exchange+Evaluation

package engine

import (
	"sync/atomic"
)

const (
	checkDepthExtension int32 = 1 // how much to extend the search on checks
	nullMoveDepthLimit  int32 = 1 // disable null move at and below this limit
	lmrDepthLimit       int32 = 3 // no LMR below and including this limit
	futilityDepthLimit  int32 = 3 // maximum depth for futility pruning

	initialAspirationWindow int32 = 25  // a quarter of a pawn
	futilityMargin          int32 = 150 // a pawn and a half
	checkpointStep          uint64 = 10000
)

// futilityFigureBonus estimates how much capturing a figure can raise
// the static evaluation.
var futilityFigureBonus [FigureArraySize]int32

func init() {
	for fig := FigureMinValue; fig <= FigureMaxValue; fig++ {
		futilityFigureBonus[fig] = max(figureBonus[fig].M, figureBonus[fig].E)
	}
}

// Options keeps the engine's options.
type Options struct {
	AnalyseMode bool // true to display info strings
}

// Stats stores statistics about a search.
type Stats struct {
	CacheHit  uint64 // positions found in the transposition table
	CacheMiss uint64 // positions not found in the transposition table
	Nodes     uint64 // number of nodes searched
	Depth     int32  // search depth
	SelDepth  int32  // maximum depth reached on the PV
}

// CacheHitRatio returns the fraction of transposition table probes
// that hit.
func (s *Stats) CacheHitRatio() float32 {
	if s.CacheHit+s.CacheMiss == 0 {
		return 0
	}
	return float32(s.CacheHit) / float32(s.CacheHit+s.CacheMiss)
}

// Logger logs search progress.
type Logger interface {
	// BeginSearch signals that a new search starts.
	BeginSearch()
	// EndSearch signals the end of the search.
	EndSearch()
	// PrintPV logs the principal variation after iterative deepening
	// completed one depth.
	PrintPV(stats Stats, score int32, pv []Move)
}

// NulLogger is a logger that does nothing.
type NulLogger struct{}

func (nl *NulLogger) BeginSearch()                              {}
func (nl *NulLogger) EndSearch()                                {}
func (nl *NulLogger) PrintPV(stats Stats, score int32, pv []Move) {}

// Searcher lifecycle states.
const (
	stateIdle int32 = iota
	stateSearching
)

// Engine searches for the best move in a position.
//
// The searcher owns the position, the transposition table and the
// evaluator while a search runs; only one search is active at a time.
type Engine struct {
	Options  Options
	Log      Logger
	Stats    Stats
	Position *Position

	eval    *Evaluator
	tt      *HashTable
	rootPly int
	stack   stack
	pvTable pvTable
	history *historyTable

	timeControl *TimeControl
	stopped     bool
	checkpoint  uint64
	state       atomic.Int32
}

// NewEngine creates a new engine for pos. If pos is nil the starting
// position is used.
func NewEngine(pos *Position, log Logger, options Options) *Engine {
	if log == nil {
		log = &NulLogger{}
	}
	tt, err := NewHashTable(DefaultHashTableSizeMB)
	if err != nil {
		panic(err) // the default size is always valid
	}
	eng := &Engine{
		Options: options,
		Log:     log,
		eval:    NewEvaluator(),
		tt:      tt,
		pvTable: newPvTable(),
		history: new(historyTable),
	}
	eng.stack.history = eng.history
	eng.SetPosition(pos)
	return eng
}

// SetPosition sets the current position. If pos is nil, the starting
// position is set.
func (eng *Engine) SetPosition(pos *Position) {
	if pos != nil {
		eng.Position = pos
	} else {
		eng.Position, _ = PositionFromFEN(FENStartPos)
	}
}

// SetHashSize resizes the transposition table to sizeMB megabytes.
func (eng *Engine) SetHashSize(sizeMB int) error {
	tt, err := NewHashTable(sizeMB)
	if err != nil {
		return err
	}
	eng.tt = tt
	return nil
}

// NewGame resets the per-game state: the transposition table, the
// principal variation table and the move history.
func (eng *Engine) NewGame() {
	eng.tt.Clear()
	eng.pvTable = newPvTable()
	*eng.history = historyTable{}
}

// Busy returns true while a search runs.
func (eng *Engine) Busy() bool {
	return eng.state.Load() != stateIdle
}

// DoMove executes a move on the engine's position.
func (eng *Engine) DoMove(move Move) {
	eng.Position.Do(move)
}

// Score evaluates the current position from the side to move's POV.
func (eng *Engine) Score() int32 {
	return eng.eval.Evaluate(eng.Position)
}

// ply returns the ply from the root of the search.
func (eng *Engine) ply() int32 {
	return int32(eng.Position.Ply - eng.rootPly)
}

// endPosition determines whether the current position ends the game.
func (eng *Engine) endPosition() (int32, bool) {
	pos := eng.Position
	if pos.InsufficientMaterial() {
		return 0, true
	}
	// Fifty full moves without a capture or a pawn move.
	if pos.FiftyMoveRule() {
		return 0, true
	}
	// Repetition is a draw. At root the search continues even after a
	// first repetition, deeper in the tree one repetition is enough to
	// prove nothing is gained.
	if r := pos.RepetitionCount(); eng.ply() > 0 && r >= 2 || r >= 3 {
		return 0, true
	}
	return 0, false
}

// retrieveHash probes the transposition table for the current position.
func (eng *Engine) retrieveHash() hashEntry {
	entry := eng.tt.get(eng.Position.Zobrist())
	if entry.kind == noEntry {
		eng.Stats.CacheMiss++
		return hashEntry{}
	}

	// Mate scores are stored relative to the entry's position and
	// adjusted relative to the root here.
	if entry.kind == exact {
		if int32(entry.score) < KnownLossScore {
			entry.score += int16(eng.ply())
		} else if int32(entry.score) > KnownWinScore {
			entry.score -= int16(eng.ply())
		}
	}

	eng.Stats.CacheHit++
	return entry
}

// updateHash stores the result of searching the current position.
func (eng *Engine) updateHash(α, β, depth, score int32, move Move) {
	kind := exact
	if score <= α {
		kind = failedLow
	} else if score >= β {
		kind = failedHigh
	}

	// Store the mate score relative to the current position; retrieval
	// adjusts it relative to the root again.
	if score < KnownLossScore {
		if kind == exact {
			score -= eng.ply()
		} else if kind == failedLow {
			score = KnownLossScore
		} else {
			return
		}
	} else if score > KnownWinScore {
		if kind == exact {
			score += eng.ply()
		} else if kind == failedHigh {
			score = KnownWinScore
		} else {
			return
		}
	}

	eng.tt.put(eng.Position.Zobrist(), hashEntry{
		kind:  kind,
		score: int16(score),
		depth: int8(depth),
		move:  move,
	})
}

// searchQuiescence resolves the violent moves before evaluating the
// position statically, so the evaluation never sits in the middle of a
// capture sequence. Stand pat gives the side to move the right to
// decline further captures.
func (eng *Engine) searchQuiescence(α, β int32) int32 {
	eng.Stats.Nodes++
	if score, done := eng.endPosition(); done {
		return score
	}

	static := eng.Score()
	if static >= β {
		return static
	}

	pos := eng.Position
	us := pos.Us()
	inCheck := pos.InCheck(us)
	localα := max(α, static)

	var bestMove Move
	eng.stack.GenerateMoves(Violent, NullMove)
	for move := eng.stack.PopMove(); move != NullMove; move = eng.stack.PopMove() {
		// Prune moves that cannot raise the stand pat score, and
		// losing captures.
		if !inCheck && isFutile(pos, static, localα, futilityMargin, move) {
			continue
		}
		if !inCheck && move.Kind == Normal && seeSign(pos, move) {
			continue
		}

		undo := pos.Do(move)
		score := -eng.searchQuiescence(-β, -localα)
		pos.Undo(undo)

		if score >= β {
			return score
		}
		if score > localα {
			localα = score
			bestMove = move
		}
	}

	if α < localα && localα < β {
		eng.pvTable.Put(pos, bestMove)
	}
	return localα
}

// tryMove descends the search tree after a move was executed.
//
// lmr is by how much to reduce a late move, nullWindow requests a scout
// search first. undo takes the move back before returning.
func (eng *Engine) tryMove(α, β, depth, lmr int32, nullWindow bool, undo UndoRecord) int32 {
	depth--

	score := α + 1
	if lmr > 0 { // reduce late moves
		score = -eng.searchTree(-α-1, -α, depth-lmr)
	}

	if score > α { // if the reduction was skipped or failed
		if nullWindow {
			score = -eng.searchTree(-α-1, -α, depth)
			if α < score && score < β {
				score = -eng.searchTree(-β, -α, depth)
			}
		} else {
			score = -eng.searchTree(-β, -α, depth)
		}
	}

	eng.Position.Undo(undo)
	return score
}

// passed returns true if a passed pawn appears or disappears with m.
func passed(pos *Position, m Move) bool {
	if m.Piece().Figure() == Pawn {
		bb := m.To.Bitboard()
		bb = West(bb) | bb | East(bb)
		pawns := pos.ByFigure[Pawn] &^ m.To.Bitboard() &^ m.From.Bitboard()
		if ForwardSpan(m.Color(), bb)&pawns == 0 {
			return true
		}
	}
	if m.Capture.Figure() == Pawn {
		bb := m.To.Bitboard()
		bb = West(bb) | bb | East(bb)
		pawns := pos.ByFigure[Pawn] &^ m.To.Bitboard() &^ m.From.Bitboard()
		if BackwardSpan(m.Color(), bb)&pawns == 0 {
			return true
		}
	}
	return false
}

// isFutile returns true if m cannot raise the static evaluation above
// α. This is a heuristic and mistakes can happen.
func isFutile(pos *Position, static, α, margin int32, m Move) bool {
	if m.Kind == Promotion {
		// Promotions and passed pawns can raise the evaluation by more
		// than the futility margin.
		return false
	}
	δ := futilityFigureBonus[m.Capture.Figure()]
	return static+δ+margin < α && !passed(pos, m)
}

// searchTree searches the tree rooted at the current position.
//
// α and β are the lower and upper bounds, depth is the remaining
// depth. The score returned is from the side to move's POV and may lie
// outside the window (fail-soft).
func (eng *Engine) searchTree(α, β, depth int32) int32 {
	ply := eng.ply()
	pvNode := α+1 < β
	pos := eng.Position
	us, them := pos.Us(), pos.Them()

	eng.Stats.Nodes++
	if !eng.stopped && eng.Stats.Nodes >= eng.checkpoint {
		eng.checkpoint = eng.Stats.Nodes + checkpointStep
		if eng.timeControl.Stopped() || eng.timeControl.NodesExceeded(eng.Stats.Nodes) {
			eng.stopped = true
		}
	}
	if eng.stopped {
		return α
	}
	if pvNode && ply > eng.Stats.SelDepth {
		eng.Stats.SelDepth = ply
	}

	// Verify that the game did not end here.
	if score, done := eng.endPosition(); done {
		if ply != 0 || score != 0 {
			// At root draws are ignored so a move is still produced.
			return score
		}
	}

	// Mate distance pruning: if an ancestor is already mating in fewer
	// plies this node cannot improve on it.
	if MateScore-ply <= α {
		return KnownWinScore
	}

	// Check the transposition table.
	entry := eng.retrieveHash()
	hash := entry.move
	if entry.kind != noEntry && depth <= int32(entry.depth) {
		score := int32(entry.score)
		if entry.kind == exact {
			if α < score && score < β {
				eng.pvTable.Put(pos, hash)
			}
			return score
		}
		if entry.kind == failedLow && score <= α {
			return score
		}
		if entry.kind == failedHigh && score >= β {
			return score
		}
	}

	if depth <= 0 {
		// The position is already proven won or lost; quiescence only
		// looks at violent moves and cannot change that.
		if α >= KnownWinScore || β <= KnownLossScore {
			return eng.Score()
		}
		score := eng.searchQuiescence(α, β)
		eng.updateHash(α, β, depth, score, NullMove)
		return score
	}

	sideIsChecked := pos.InCheck(us)

	// Null move pruning: if passing still fails high the opponent will
	// avoid this line anyway.
	if depth > nullMoveDepthLimit && // not too close to the leaves
		!sideIsChecked && // null move is illegal in check
		pos.MinorsAndMajors(us) != 0 && // avoid zugzwang with only pawns
		KnownLossScore < α && β < KnownWinScore {
		undo := pos.Do(NullMove)
		reduction := 1 + pos.MinorsAndMajors(us).CountMax2()
		score := eng.tryMove(β-1, β, depth-reduction, 0, false, undo)
		if score >= β {
			return score
		}
	}

	bestMove, bestScore := NullMove, -InfinityScore

	// Futility and history pruning at frontier nodes.
	static := int32(0)
	allowLeafsPruning := false
	if depth <= futilityDepthLimit &&
		!sideIsChecked &&
		!pvNode &&
		KnownLossScore < α && β < KnownWinScore {
		allowLeafsPruning = true
		static = eng.Score()
	}

	// Principal variation search: scout with a null window once a good
	// move was found.
	nullWindow := false
	allowLateMove := !sideIsChecked && depth > lmrDepthLimit

	// dropped is true if not all moves were searched; mate cannot be
	// declared then.
	dropped := false
	numMoves := int32(0)
	localα := α

	eng.stack.GenerateMoves(All, hash)
	for move := eng.stack.PopMove(); move != NullMove; move = eng.stack.PopMove() {
		critical := move == hash || eng.stack.IsKiller(move)
		numMoves++

		newDepth := depth
		undo := pos.Do(move)

		// Extend when the move gives check unless the checker can
		// simply be captured.
		givesCheck := pos.InCheck(them)
		if givesCheck {
			if !pos.IsAttackedBy(move.To, them) || pos.IsAttackedBy(move.To, us) {
				newDepth += checkDepthExtension
			}
		}

		// Reduce late quiet moves and bad captures.
		lmr := int32(0)
		if allowLateMove && !givesCheck && !critical {
			if move.IsQuiet() || seeSign(pos, move) {
				lmr = 1 + min(depth, numMoves)/5
			}
		}

		// Prune moves close to the frontier.
		if allowLeafsPruning && !givesCheck && !critical {
			// Quiet moves that performed badly in the past.
			if stat := eng.history.get(move); stat < -15 && (move.IsQuiet() || seeSign(pos, move)) {
				dropped = true
				pos.Undo(undo)
				continue
			}
			// Moves that cannot raise alpha.
			if isFutile(pos, static, localα, depth*futilityMargin, move) {
				bestScore = max(bestScore, static)
				dropped = true
				pos.Undo(undo)
				continue
			}
		}

		score := eng.tryMove(localα, β, newDepth, lmr, nullWindow, undo)
		if allowLeafsPruning && !givesCheck {
			if score > localα {
				eng.history.add(move, 16)
			} else {
				eng.history.add(move, -1)
			}
		}

		if score >= β {
			// Fail high, cut node.
			eng.stack.SaveKiller(move)
			eng.updateHash(α, β, depth, score, move)
			return score
		}
		if score > bestScore {
			nullWindow = true
			bestMove, bestScore = move, score
			localα = max(localα, score)
		}
	}

	if !dropped {
		// No legal move means the game ended here.
		if numMoves == 0 {
			if sideIsChecked {
				bestScore = MatedScore + ply
			} else {
				bestScore = 0
			}
		}
		eng.updateHash(α, β, depth, bestScore, bestMove)
		if α < bestScore && bestScore < β {
			eng.pvTable.Put(pos, bestMove)
		}
	}

	return bestScore
}

// search runs one iteration at the given depth inside an aspiration
// window seeded with the previous iteration's score. The window widens
// gradually when the search fails outside it, the scheme used by
// RobboLito and Stockfish.
func (eng *Engine) search(depth, estimated int32) int32 {
	γ, δ := estimated, initialAspirationWindow
	α, β := max(γ-δ, -InfinityScore), min(γ+δ, InfinityScore)
	score := estimated

	if depth < 4 {
		// Disable the aspiration window for very low depths where the
		// score is too unstable.
		α = -InfinityScore
		β = +InfinityScore
	}

	for !eng.stopped {
		score = eng.searchTree(α, β, depth)
		if score <= α {
			α = max(α-δ, -InfinityScore)
			δ += δ / 2
		} else if score >= β {
			β = min(β+δ, InfinityScore)
			δ += δ / 2
		} else {
			break
		}
	}
	return score
}

// Play searches the current position within the given time control.
//
// Returns the principal variation: moves[0] is the best move found. If
// the game is already finished the variation is empty and the caller
// reports the null move. A search canceled before the first depth
// completed still returns a legal move when one exists.
//
// Only an idle searcher accepts a new search.
func (eng *Engine) Play(tc *TimeControl) []Move {
	if !eng.state.CompareAndSwap(stateIdle, stateSearching) {
		log.Error("search rejected: searcher is not idle")
		return nil
	}
	defer eng.state.Store(stateIdle)

	eng.Log.BeginSearch()
	eng.Stats = Stats{Depth: -1}

	eng.rootPly = eng.Position.Ply
	eng.timeControl = tc
	eng.stopped = false
	eng.checkpoint = checkpointStep
	eng.stack.Reset(eng.Position)

	var moves []Move
	score := int32(0)
	for depth := int32(0); depth < 64; depth++ {
		if !tc.NextDepth(depth) {
			// The time control says stop; at least one depth has been
			// searched so a move is available.
			break
		}

		eng.Stats.Depth = depth
		score = eng.search(depth, score)

		if !eng.stopped {
			// If the search was not interrupted the principal
			// variation is complete and trustworthy.
			moves = eng.pvTable.Get(eng.Position)
			eng.Log.PrintPV(eng.Stats, score, moves)
		}
	}

	if len(moves) == 0 {
		// The clock expired before depth one finished. Fall back to
		// any legal move rather than forfeiting.
		var legal []Move
		eng.Position.GenerateMoves(All, &legal)
		if len(legal) > 0 {
			moves = legal[:1]
		}
	}

	eng.Log.EndSearch()
	return moves
}
