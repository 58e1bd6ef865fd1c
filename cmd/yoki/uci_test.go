package main

import (
	"testing"

	"github.com/yokichess/yoki/engine"
)

func TestExecutePosition(t *testing.T) {
	uci := NewUCI()
	if err := uci.Execute("position startpos moves e2e4 e7e5 g1f3"); err != nil {
		t.Fatal(err)
	}
	got := uci.Engine.Position.String()
	want := "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2"
	if got != want {
		t.Errorf("position = %q, want %q", got, want)
	}
}

func TestExecutePositionFEN(t *testing.T) {
	uci := NewUCI()
	fen := "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	if err := uci.Execute("position fen " + fen); err != nil {
		t.Fatal(err)
	}
	if got := uci.Engine.Position.String(); got != fen {
		t.Errorf("position = %q, want %q", got, fen)
	}
}

func TestExecutePositionRejectsBadInput(t *testing.T) {
	uci := NewUCI()
	before := uci.Engine.Position.String()

	data := []string{
		"position",
		"position fen not a fen",
		"position startpos moves e2e5",
		"position startpos moves e9e4",
	}
	for _, line := range data {
		if err := uci.Execute(line); err == nil {
			t.Errorf("Execute(%q) should have failed", line)
		}
	}

	if got := uci.Engine.Position.String(); got != before {
		t.Errorf("a rejected command must not change the position: %q", got)
	}
}

func TestExecuteSetOption(t *testing.T) {
	uci := NewUCI()
	data := []struct {
		line string
		ok   bool
	}{
		{"setoption name Hash value 16", true},
		{"setoption name Threads value 2", true},
		{"setoption name Ponder value true", true},
		{"setoption name Hash value zero", false},
		{"setoption name NoSuchOption value 1", false},
		{"setoption", false},
	}
	for _, d := range data {
		err := uci.Execute(d.line)
		if d.ok && err != nil {
			t.Errorf("Execute(%q) failed: %v", d.line, err)
		}
		if !d.ok && err == nil {
			t.Errorf("Execute(%q) should have failed", d.line)
		}
	}
}

func TestExecuteGoAndStop(t *testing.T) {
	uci := NewUCI()
	if err := uci.Execute("position startpos"); err != nil {
		t.Fatal(err)
	}
	if err := uci.Execute("go depth 2"); err != nil {
		t.Fatal(err)
	}
	// stop waits for the searcher to go idle again.
	if err := uci.Execute("stop"); err != nil {
		t.Fatal(err)
	}
	if uci.Engine.Busy() {
		t.Errorf("the engine must be idle after stop")
	}
}

func TestExecuteQuit(t *testing.T) {
	uci := NewUCI()
	if err := uci.Execute("quit"); err != errQuit {
		t.Errorf("quit returned %v", err)
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	uci := NewUCI()
	if err := uci.Execute("xyzzy"); err == nil {
		t.Errorf("unknown commands must be reported")
	}
	if err := uci.Execute(""); err != nil {
		t.Errorf("empty lines are ignored, got %v", err)
	}
}

func TestFormatScore(t *testing.T) {
	data := []struct {
		score int32
		want  string
	}{
		{engine.MateScore - 1, "score mate 1"},
		{engine.MateScore - 3, "score mate 2"},
		{engine.MatedScore + 2, "score mate -1"},
		{123, "score cp 123"},
		{-50, "score cp -50"},
	}
	for _, d := range data {
		if got := formatScore(d.score); got != d.want {
			t.Errorf("formatScore(%d) = %q, want %q", d.score, got, d.want)
		}
	}
}
