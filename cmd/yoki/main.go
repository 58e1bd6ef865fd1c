// Copyright 2024 The yoki authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// yoki is a UCI chess engine.
//
// Usage:
//
//	yoki [-debug] [-version]
//
// The engine reads UCI commands from stdin and writes replies to
// stdout. Logs go to stderr.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"

	gologging "github.com/op/go-logging"

	"github.com/yokichess/yoki/internal/logging"
)

var buildVersion = "dev"

var (
	version = flag.Bool("version", false, "print version and exit")
	debug   = flag.Bool("debug", false, "enable debug logging")
)

func main() {
	flag.Parse()
	if *version {
		fmt.Printf("yoki %v\n", buildVersion)
		return
	}
	if *debug {
		logging.SetLevel(gologging.DEBUG)
	}

	uci := NewUCI()
	scan := bufio.NewScanner(os.Stdin)
	scan.Buffer(make([]byte, 1<<16), 1<<16)

	for scan.Scan() {
		line := scan.Text()
		if err := uci.Execute(line); err != nil {
			if errors.Is(err, errQuit) {
				break
			}
			// Errors are logged; the dialogue continues with the
			// engine's prior state intact.
			log.Errorf("%v", err)
		}
	}

	if err := scan.Err(); err != nil {
		log.Errorf("stdin: %v", err)
		os.Exit(1)
	}
}
