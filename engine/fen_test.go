package engine

import (
	"errors"
	"testing"
)

var (
	fenKiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	fenDuplain  = "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1"
)

func TestFENRoundTrip(t *testing.T) {
	data := []string{
		FENStartPos,
		fenKiwipete,
		fenDuplain,
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1",
		"7k/5Q2/6K1/8/8/8/8/8 b - - 0 1",
		"4k3/8/8/8/8/8/8/4K2R w K - 4 32",
	}
	for _, fen := range data {
		pos, err := PositionFromFEN(fen)
		if err != nil {
			t.Errorf("PositionFromFEN(%q) failed: %v", fen, err)
			continue
		}
		if got := pos.String(); got != fen {
			t.Errorf("round trip failed:\n  in  %q\n  out %q", fen, got)
		}
		if err := pos.Verify(); err != nil {
			t.Errorf("position from %q does not verify: %v", fen, err)
		}
	}
}

func TestFENStartPos(t *testing.T) {
	pos, err := PositionFromFEN(FENStartPos)
	if err != nil {
		t.Fatal(err)
	}
	if pos.SideToMove != White {
		t.Errorf("expected White to move")
	}
	if pos.CastlingAbility() != AnyCastle {
		t.Errorf("expected all castling rights, got %v", pos.CastlingAbility())
	}
	if pos.Get(SquareE1) != WhiteKing || pos.Get(SquareD8) != BlackQueen {
		t.Errorf("pieces are misplaced")
	}
	if pos.HalfMoveClock() != 0 || pos.FullMoveNumber() != 1 {
		t.Errorf("clocks are wrong: %d %d", pos.HalfMoveClock(), pos.FullMoveNumber())
	}
}

func TestFENMalformed(t *testing.T) {
	data := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -",           // five fields
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1 extra", // seven fields
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",                // seven ranks
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPP1P/RNBQKBNR w KQkq - 0 1",      // rank sums to nine
		"rnbqkbnr/ppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",        // rank sums to seven
		"rnbqkbnr/pppppppp/44/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",      // consecutive digits
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",       // bad side
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KKqk - 0 1",       // duplicated right
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e4 0 1",      // bad ep rank
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - -1 1",      // negative clock
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 0",       // zero move number
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNX w KQkq - 0 1",       // unknown piece
		"8/8/8/8/8/8/8/8 w - - 0 1",                                      // no kings
		"kk6/8/8/8/8/8/8/KK6 w - - 0 1",                                  // two kings each
		"k7/8/8/8/8/1P6/8/K7 w - - 0 1",                                  // legal anchor
		"k7/P7/8/8/8/8/8/K7 b - - 0 1",                                   // legal anchor
		"k6P/8/8/8/8/8/8/K7 w - - 0 1",                                   // pawn on the eighth rank
		"4k3/8/8/8/8/8/8/6K1 w K - 0 1",                                  // castling right without rook
	}
	for _, fen := range data {
		switch fen {
		case "k7/8/8/8/8/1P6/8/K7 w - - 0 1", "k7/P7/8/8/8/8/8/K7 b - - 0 1":
			// Legal positions used as sanity anchors for this table.
			if _, err := PositionFromFEN(fen); err != nil {
				t.Errorf("PositionFromFEN(%q) unexpectedly failed: %v", fen, err)
			}
		default:
			if _, err := PositionFromFEN(fen); err == nil {
				t.Errorf("PositionFromFEN(%q) should have failed", fen)
			} else if !errors.Is(err, ErrMalformedNotation) {
				t.Errorf("PositionFromFEN(%q) returned %v, want ErrMalformedNotation", fen, err)
			}
		}
	}
}

func TestFENUnusableEnpassantRoundTrips(t *testing.T) {
	// No black pawn can capture on e3, the square is still serialized.
	fen := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	pos, err := PositionFromFEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	if pos.EnpassantSquare() != SquareE3 {
		t.Errorf("en passant square = %v, want e3", pos.EnpassantSquare())
	}
	if pos.String() != fen {
		t.Errorf("round trip failed: %q", pos.String())
	}
	// The unusable square does not contribute to the hash: the same
	// position without it hashes identically.
	bare, err := PositionFromFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if bare.Zobrist() != pos.Zobrist() {
		t.Errorf("unusable en passant square changed the hash")
	}
}
