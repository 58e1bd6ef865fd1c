// Copyright 2024 The yoki authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// uci.go implements the UCI protocol described at
// http://wbec-ridderkerk.nl/html/UCIProtocol.html
//
// The dialogue runs on stdin/stdout; the search runs on its own
// goroutine so stop and quit are handled while the engine thinks.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/yokichess/yoki/engine"
	"github.com/yokichess/yoki/internal/logging"
)

var (
	log     = logging.GetLog()
	errQuit = errors.New("quit")
)

// uciLogger prints search progress in UCI format.
type uciLogger struct {
	start time.Time
	buf   *bytes.Buffer
	// human formats node counts with thousands grouping for the
	// stderr diagnostics.
	human *message.Printer
}

func newUCILogger() *uciLogger {
	return &uciLogger{
		buf:   &bytes.Buffer{},
		human: message.NewPrinter(language.English),
	}
}

func (ul *uciLogger) BeginSearch() {
	ul.start = time.Now()
	ul.buf.Reset()
}

func (ul *uciLogger) EndSearch() {
	ul.flush()
}

func (ul *uciLogger) PrintPV(stats engine.Stats, score int32, pv []engine.Move) {
	fmt.Fprintf(ul.buf, "info depth %d seldepth %d ", stats.Depth, stats.SelDepth)

	fmt.Fprintf(ul.buf, "%s ", formatScore(score))

	elapsed := maxDuration(time.Since(ul.start), time.Microsecond)
	nps := stats.Nodes * uint64(time.Second) / uint64(elapsed)
	millis := uint64(elapsed / time.Millisecond)
	fmt.Fprintf(ul.buf, "nodes %d time %d nps %d ", stats.Nodes, millis, nps)

	fmt.Fprintf(ul.buf, "pv")
	for _, m := range pv {
		fmt.Fprintf(ul.buf, " %v", m.UCI())
	}
	fmt.Fprintf(ul.buf, "\n")

	ul.flush()

	log.Debug(ul.human.Sprintf("depth %d: %d nodes at %d nps, cache hit %.1f%%",
		stats.Depth, stats.Nodes, nps, 100*stats.CacheHitRatio()))
}

// formatScore renders a score for an info line. Mates are reported in
// moves, not plies.
func formatScore(score int32) string {
	if score > engine.KnownWinScore {
		return fmt.Sprintf("score mate %d", (engine.MateScore-score+1)/2)
	}
	if score < engine.KnownLossScore {
		return fmt.Sprintf("score mate %d", (engine.MatedScore-score)/2)
	}
	return fmt.Sprintf("score cp %d", score)
}

// flush writes the buffered lines to stdout.
func (ul *uciLogger) flush() {
	os.Stdout.Write(ul.buf.Bytes())
	ul.buf.Reset()
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

// UCI drives the engine over the UCI protocol.
type UCI struct {
	Engine      *engine.Engine
	timeControl *engine.TimeControl

	// buffer of 1; if empty then the engine is available.
	idle chan struct{}
}

func NewUCI() *UCI {
	return &UCI{
		Engine: engine.NewEngine(nil, newUCILogger(), engine.Options{}),
		idle:   make(chan struct{}, 1),
	}
}

var reCmd = regexp.MustCompile(`^[[:word:]]+\b`)

// Execute handles one command line. Returns errQuit on quit.
func (uci *UCI) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	cmd := reCmd.FindString(line)
	if cmd == "" {
		return fmt.Errorf("invalid command line")
	}

	// These commands do not expect the engine to be idle.
	switch cmd {
	case "isready":
		return uci.isready(line)
	case "quit":
		return errQuit
	case "stop":
		return uci.stop(line)
	case "uci":
		return uci.uci(line)
	}

	if uci.Engine.Busy() {
		// A state changing command during an active search violates
		// the protocol. Log and ignore.
		return fmt.Errorf("%w: %q while searching", engine.ErrProtocolViolation, cmd)
	}

	// Make sure that the engine is idle.
	uci.idle <- struct{}{}
	<-uci.idle

	switch cmd {
	case "ucinewgame":
		return uci.ucinewgame(line)
	case "position":
		return uci.position(line)
	case "go":
		return uci.go_(line)
	case "setoption":
		return uci.setoption(line)
	default:
		return fmt.Errorf("unhandled command %s", cmd)
	}
}

func (uci *UCI) uci(line string) error {
	fmt.Printf("id name yoki %v\n", buildVersion)
	fmt.Printf("id author The yoki authors\n")
	fmt.Printf("\n")
	fmt.Printf("option name Hash type spin default %v min 1 max 65536\n", engine.DefaultHashTableSizeMB)
	fmt.Printf("option name Threads type spin default 1 min 1 max 1\n")
	fmt.Printf("option name Ponder type check default false\n")
	fmt.Println("uciok")
	return nil
}

func (uci *UCI) isready(line string) error {
	fmt.Println("readyok")
	return nil
}

func (uci *UCI) ucinewgame(line string) error {
	uci.Engine.NewGame()
	return nil
}

func (uci *UCI) position(line string) error {
	args := strings.Fields(line)[1:]
	if len(args) == 0 {
		return fmt.Errorf("expected argument for 'position'")
	}

	var pos *engine.Position
	var err error

	i := 0
	switch args[i] {
	case "startpos":
		pos, err = engine.PositionFromFEN(engine.FENStartPos)
		i++
	case "fen":
		for i < len(args) && args[i] != "moves" {
			i++
		}
		pos, err = engine.PositionFromFEN(strings.Join(args[1:i], " "))
	default:
		err = fmt.Errorf("unknown position command: %s", args[0])
	}
	if err != nil {
		return err
	}

	if i < len(args) {
		if args[i] != "moves" {
			return fmt.Errorf("expected 'moves', got %q", args[i])
		}
		for _, s := range args[i+1:] {
			move, err := pos.UCIToMove(s)
			if err != nil {
				return err
			}
			if _, err := pos.Apply(move); err != nil {
				return err
			}
		}
	}

	// The position is published only after every move applied cleanly.
	uci.Engine.SetPosition(pos)
	return nil
}

func (uci *UCI) go_(line string) error {
	uci.timeControl = engine.NewTimeControl(uci.Engine.Position)

	args := strings.Fields(line)[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "infinite":
			uci.timeControl = engine.NewTimeControl(uci.Engine.Position)
		case "ponder":
			// Pondering is not supported; the search runs on our time.
		case "wtime":
			i++
			t, _ := strconv.Atoi(args[i])
			uci.timeControl.WTime = time.Duration(t) * time.Millisecond
		case "winc":
			i++
			t, _ := strconv.Atoi(args[i])
			uci.timeControl.WInc = time.Duration(t) * time.Millisecond
		case "btime":
			i++
			t, _ := strconv.Atoi(args[i])
			uci.timeControl.BTime = time.Duration(t) * time.Millisecond
		case "binc":
			i++
			t, _ := strconv.Atoi(args[i])
			uci.timeControl.BInc = time.Duration(t) * time.Millisecond
		case "movestogo":
			i++
			t, _ := strconv.Atoi(args[i])
			uci.timeControl.MovesToGo = int32(t)
		case "movetime":
			i++
			t, _ := strconv.Atoi(args[i])
			uci.timeControl.WTime = time.Duration(t) * time.Millisecond
			uci.timeControl.WInc = 0
			uci.timeControl.BTime = time.Duration(t) * time.Millisecond
			uci.timeControl.BInc = 0
			uci.timeControl.MovesToGo = 1
		case "depth":
			i++
			d, _ := strconv.Atoi(args[i])
			uci.timeControl.Depth = int32(d)
		case "nodes":
			i++
			n, _ := strconv.Atoi(args[i])
			uci.timeControl.Nodes = uint64(n)
		default:
			return fmt.Errorf("invalid go command %s", args[i])
		}
	}

	uci.timeControl.Start()
	uci.idle <- struct{}{}
	go uci.play()
	return nil
}

func (uci *UCI) stop(line string) error {
	if uci.timeControl != nil {
		uci.timeControl.Stop()
	}
	// Wait until the engine becomes idle again.
	uci.idle <- struct{}{}
	<-uci.idle
	return nil
}

// play runs the search. Runs on its own goroutine.
func (uci *UCI) play() {
	moves := uci.Engine.Play(uci.timeControl)

	if len(moves) == 0 {
		// No legal move: mate or stalemate.
		fmt.Printf("bestmove 0000\n")
	} else if len(moves) == 1 {
		fmt.Printf("bestmove %v\n", moves[0].UCI())
	} else {
		fmt.Printf("bestmove %v ponder %v\n", moves[0].UCI(), moves[1].UCI())
	}

	// Mark the engine as idle only after bestmove was written, so info
	// and bestmove lines never interleave wrongly.
	<-uci.idle
}

var reOption = regexp.MustCompile(`^setoption\s+name\s+(.+?)(\s+value\s+(.*))?$`)

func (uci *UCI) setoption(line string) error {
	option := reOption.FindStringSubmatch(line)
	if option == nil {
		return fmt.Errorf("invalid setoption arguments")
	}

	name := strings.ToLower(option[1])
	value := option[3]
	switch name {
	case "hash":
		mb, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("bad Hash value %q", value)
		}
		return uci.Engine.SetHashSize(mb)
	case "threads":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("bad Threads value %q", value)
		}
		if n > 1 {
			log.Warningf("Threads %d requested, single threaded search keeps 1", n)
		}
		return nil
	case "ponder":
		// Accepted for GUI compatibility, pondering stays off.
		return nil
	default:
		return fmt.Errorf("unhandled option %q", option[1])
	}
}
