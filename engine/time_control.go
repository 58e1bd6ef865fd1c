// Copyright 2024 The yoki authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// time_control.go splits the remaining clock time over the moves still
// expected and stops the search when the budget runs out. The searcher
// polls Stopped at node checkpoints; the boundary may also force a stop
// from another goroutine at any time.

package engine

import (
	"math"
	"sync"
	"time"
)

const (
	defaultMovesToGo    = 30 // moves still expected when the clock does not say
	defaultBranchFactor = 2
)

// atomicFlag is an atomic bool that can only be set.
type atomicFlag struct {
	lock sync.Mutex
	flag bool
}

func (af *atomicFlag) set() {
	af.lock.Lock()
	af.flag = true
	af.lock.Unlock()
}

func (af *atomicFlag) get() bool {
	af.lock.Lock()
	tmp := af.flag
	af.lock.Unlock()
	return tmp
}

// TimeControl splits the remaining time over MovesToGo and enforces the
// optional depth and node bounds.
type TimeControl struct {
	WTime, WInc time.Duration // time and increment for White
	BTime, BInc time.Duration // time and increment for Black
	Depth       int32         // maximum search depth (inclusive)
	MovesToGo   int32         // number of remaining moves
	Nodes       uint64        // node budget, 0 for unlimited

	numPieces  int32
	sideToMove Color
	stopped    atomicFlag

	searchTime     time.Duration
	searchDeadline time.Time
}

// NewTimeControl returns a time control for pos with no limits set.
func NewTimeControl(pos *Position) *TimeControl {
	inf := time.Duration(math.MaxInt64)
	return &TimeControl{
		WTime:      inf,
		BTime:      inf,
		Depth:      64,
		MovesToGo:  defaultMovesToGo,
		numPieces:  pos.All().Count(),
		sideToMove: pos.SideToMove,
	}
}

// NewFixedDepthTimeControl returns a time control limited to depth only.
func NewFixedDepthTimeControl(pos *Position, depth int32) *TimeControl {
	tc := NewTimeControl(pos)
	tc.Depth = depth
	tc.MovesToGo = 1
	return tc
}

// NewDeadlineTimeControl returns a time control limited to a total
// thinking time.
func NewDeadlineTimeControl(pos *Position, deadline time.Duration) *TimeControl {
	tc := NewTimeControl(pos)
	tc.WTime = deadline
	tc.BTime = deadline
	tc.MovesToGo = 1
	return tc
}

// thinkingTime calculates how much time to think this move given the
// remaining time t and the increment i. The formula uses more of the
// clock early and relies on the increment later.
func (tc *TimeControl) thinkingTime(t, i time.Duration) time.Duration {
	tmp := time.Duration(tc.MovesToGo)
	if tt := (t + (tmp-1)*i) / tmp; tt < t {
		return tt
	}
	return t
}

// Start starts the timer. Must be called before the search.
func (tc *TimeControl) Start() {
	// Branch more when there are more pieces; with fewer pieces there
	// is less mobility and the hash table hits more often.
	branchFactor := time.Duration(defaultBranchFactor)
	for np := tc.numPieces - 2; np > 0; np /= 6 {
		branchFactor++
	}
	// Spend less of the remaining clock when only a few moves are left.
	for i := int32(4); i > 0; i /= 2 {
		if tc.MovesToGo <= i {
			branchFactor++
		}
	}

	var otime, oinc time.Duration
	if tc.sideToMove == White {
		otime, oinc = tc.WTime, tc.WInc
	} else {
		otime, oinc = tc.BTime, tc.BInc
	}

	tc.stopped = atomicFlag{}
	tc.searchTime = tc.thinkingTime(otime, oinc) / branchFactor
	tc.searchDeadline = time.Now().Add(tc.searchTime)
}

// NextDepth returns true if the search should proceed at depth. Depths
// up to 2 always run so a move is available even under an expired
// clock.
func (tc *TimeControl) NextDepth(depth int32) bool {
	return depth <= tc.Depth && (depth <= 2 || !tc.Stopped())
}

// Stop marks the search as stopped. The result of the search is still
// used.
func (tc *TimeControl) Stop() {
	tc.stopped.set()
}

// Stopped returns true once the search exhausted its budget or Stop
// was called.
func (tc *TimeControl) Stopped() bool {
	if tc.stopped.get() {
		return true
	}
	if time.Now().After(tc.searchDeadline) {
		tc.stopped.set()
		return true
	}
	return false
}

// NodesExceeded returns true if nodes passed the configured budget.
func (tc *TimeControl) NodesExceeded(nodes uint64) bool {
	return tc.Nodes != 0 && nodes >= tc.Nodes
}
