/*
 * Synacor debugger - Main process.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/synacor-debugger/command/parser"
	"github.com/rcornwell/synacor-debugger/command/reader"
	"github.com/rcornwell/synacor-debugger/debugger"
	logger "github.com/rcornwell/synacor-debugger/util/logger"
)

func main() {
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optTrace := getopt.StringLong("trace", 't', "", "Trace every stepped instruction to this file")
	optBreakpoints := getopt.StringLong("breakpoints", 'b', "", "File of \"b\" commands to install before the prompt")
	optDebug := getopt.BoolLong("debug", 'd', "Mirror debug-level log records to stderr")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.SetParameters("rom-file")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	args := getopt.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: synacor-debugger [options] rom-file")
		getopt.Usage()
		os.Exit(1)
	}
	romPath := args[0]

	var logWriter io.Writer
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "unable to create log file: %s\n", err)
			os.Exit(1)
		}
		logWriter = f
		defer f.Close()
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	log := slog.New(logger.NewHandler(logWriter, &slog.HandlerOptions{Level: programLevel}, *optDebug))
	slog.SetDefault(log)

	rom, err := os.ReadFile(romPath)
	if err != nil {
		log.Error("unable to load ROM", "path", romPath, "error", err)
		fmt.Fprintf(os.Stderr, "fatal: loading %s: %s\n", romPath, err)
		os.Exit(1)
	}

	dbg, err := debugger.New(rom, log)
	if err != nil {
		log.Error("unable to build machine from ROM", "path", romPath, "error", err)
		fmt.Fprintf(os.Stderr, "fatal: loading %s: %s\n", romPath, err)
		os.Exit(1)
	}

	if *optTrace != "" {
		if err := dbg.SetTraceFile(*optTrace); err != nil {
			log.Warn("unable to open trace file", "path", *optTrace, "error", err)
		}
	}

	if *optBreakpoints != "" {
		if err := loadBreakpointFile(*optBreakpoints, dbg); err != nil {
			log.Warn("unable to load breakpoint file", "path", *optBreakpoints, "error", err)
		}
	}

	log.Info("debugger started", "rom", romPath)
	if err := reader.ConsoleReader(dbg); err != nil {
		os.Exit(1)
	}
}

// loadBreakpointFile installs one breakpoint per line of path, each
// line a "b" command's arguments exactly as typed at the prompt.
func loadBreakpointFile(path string, dbg *debugger.Debugger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if _, err := parser.ProcessCommand("b "+line, dbg); err != nil {
			fmt.Fprintf(os.Stderr, "breakpoint file %s: %s\n", path, err)
		}
	}
	return scanner.Err()
}
