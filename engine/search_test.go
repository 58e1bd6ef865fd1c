package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scoreLogger records the last reported principal variation and score.
type scoreLogger struct {
	score int32
	pv    []Move
}

func (sl *scoreLogger) BeginSearch() {}
func (sl *scoreLogger) EndSearch()   {}
func (sl *scoreLogger) PrintPV(stats Stats, score int32, pv []Move) {
	sl.score = score
	sl.pv = append(sl.pv[:0], pv...)
}

func searchPosition(t *testing.T, fen string, depth int32) (*scoreLogger, []Move) {
	t.Helper()
	pos, err := PositionFromFEN(fen)
	require.NoError(t, err)

	sl := &scoreLogger{}
	eng := NewEngine(pos, sl, Options{})
	tc := NewFixedDepthTimeControl(pos, depth)
	tc.Start()
	return sl, eng.Play(tc)
}

// TestMateInOne: the back rank mate must be found and scored as mate
// in one ply.
func TestMateInOne(t *testing.T) {
	sl, moves := searchPosition(t, "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1", 5)
	require.NotEmpty(t, moves)
	assert.Equal(t, "a1a8", moves[0].UCI())
	assert.Equal(t, MateScore-1, sl.score)
}

// TestStalemateHasNoMoves: a stalemated side has no moves and the
// search reports none.
func TestStalemateHasNoMoves(t *testing.T) {
	_, moves := searchPosition(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", 3)
	assert.Empty(t, moves)
}

// TestInsufficientMaterialIsDrawn: with bare kings every line scores
// zero.
func TestInsufficientMaterialIsDrawn(t *testing.T) {
	sl, moves := searchPosition(t, "K7/8/k7/8/8/8/8/8 w - - 0 1", 5)
	require.NotEmpty(t, moves)
	assert.Equal(t, int32(0), sl.score)
}

// TestMateInTwo: the two rook ladder against a bare king. There is no
// mate in one, so the score must be exactly mate in three plies.
func TestMateInTwo(t *testing.T) {
	sl, moves := searchPosition(t, "k7/8/7R/8/8/8/8/6RK w - - 0 1", 6)
	require.NotEmpty(t, moves)
	assert.Equal(t, MateScore-3, sl.score)
}

func TestSearchPrefersCapture(t *testing.T) {
	// White can simply take the hanging queen.
	_, moves := searchPosition(t, "4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1", 4)
	require.NotEmpty(t, moves)
	assert.Equal(t, "e4d5", moves[0].UCI())
}

func TestEngineBusyState(t *testing.T) {
	eng := NewEngine(nil, nil, Options{})
	assert.False(t, eng.Busy())

	pos := eng.Position
	tc := NewFixedDepthTimeControl(pos, 2)
	tc.Start()
	moves := eng.Play(tc)
	assert.False(t, eng.Busy(), "the searcher must return to idle")
	assert.NotEmpty(t, moves)
}

func TestStopReturnsBestSoFar(t *testing.T) {
	pos, err := PositionFromFEN(fenKiwipete)
	require.NoError(t, err)

	eng := NewEngine(pos, nil, Options{})
	tc := NewFixedDepthTimeControl(pos, 20)
	tc.Start()
	tc.Stop() // stop before starting: only the mandatory depths run
	moves := eng.Play(tc)
	require.NotEmpty(t, moves, "a stopped search still returns a move")

	var legal []Move
	pos.GenerateMoves(All, &legal)
	assert.Contains(t, legal, moves[0])
}

func TestNodeBudgetStopsSearch(t *testing.T) {
	pos, err := PositionFromFEN(fenKiwipete)
	require.NoError(t, err)

	eng := NewEngine(pos, nil, Options{})
	tc := NewFixedDepthTimeControl(pos, 30)
	tc.Nodes = 20000
	tc.Start()
	eng.Play(tc)
	// The budget is enforced at checkpoints, so allow up to two checkpoint
	// steps of slack.
	assert.Less(t, eng.Stats.Nodes, tc.Nodes+2*checkpointStep)
}

func TestNewGameClearsTables(t *testing.T) {
	eng := NewEngine(nil, nil, Options{})
	tc := NewFixedDepthTimeControl(eng.Position, 4)
	tc.Start()
	eng.Play(tc)
	require.NotZero(t, eng.Stats.Nodes)

	eng.NewGame()
	entry := eng.tt.get(eng.Position.Zobrist())
	assert.Equal(t, noEntry, entry.kind)
}
