/*
 * Synacor debugger - Command reader.
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

// Package reader drives the debugger's REPL with liner: line editing,
// history, Ctrl-C abort, and tab completion sourced from the command
// table.
package reader

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/peterh/liner"

	"github.com/rcornwell/synacor-debugger/command/parser"
	"github.com/rcornwell/synacor-debugger/debugger"
)

// ConsoleReader drives dbg from stdin until the user quits or aborts.
// It returns a non-nil error only for an unrecoverable I/O failure.
func ConsoleReader(dbg *debugger.Debugger) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		return parser.CompleteCmd(partial)
	})

	for {
		prompt := promptFor(dbg)
		input, err := line.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return nil
			}
			slog.Error("error reading command line", "error", err)
			return err
		}

		line.AppendHistory(input)

		if _, stalled := dbg.IsStalled(); stalled {
			if handled, err := feedStalledInput(dbg, input); handled {
				if err != nil {
					fmt.Println("Error: " + err.Error())
				}
				continue
			}
		}

		quit, err := parser.ProcessCommand(input, dbg)
		if err != nil {
			fmt.Println("Error: " + err.Error())
		}
		if quit {
			return nil
		}
	}
}

// promptFor renders the "IP >" / "HALTED >" prompt the debugger shows
// between commands, and the input-request prompt while stalled.
func promptFor(dbg *debugger.Debugger) string {
	if reg, stalled := dbg.IsStalled(); stalled {
		return fmt.Sprintf("vm requesting input for %s (! to break to debugger): ", reg)
	}
	if ip, ok := dbg.IP(); ok {
		return fmt.Sprintf("%s > ", ip)
	}
	return "HALTED > "
}

// feedStalledInput treats a line typed while the VM is stalled on `in`
// as raw input for the VM rather than a debugger command, unless it is
// the bare "!" escape, which breaks back to the debugger prompt without
// feeding anything.
func feedStalledInput(dbg *debugger.Debugger, input string) (bool, error) {
	if input == "!" {
		return true, nil
	}
	input += "\n"
	for i := 0; i < len(input); i++ {
		if _, stalled := dbg.IsStalled(); !stalled {
			break
		}
		r, err := dbg.Input(input[i])
		if err != nil {
			return true, err
		}
		printRunResult(r)
		if r.Reason == debugger.StoppedHalted {
			break
		}
		if _, stalled := dbg.IsStalled(); stalled {
			continue
		}
		r, err = dbg.Continue()
		if err != nil {
			return true, err
		}
		printRunResult(r)
	}
	return true, nil
}

func printRunResult(r debugger.RunResult) {
	if len(r.Output) > 0 {
		fmt.Print(string(r.Output))
	}
	switch r.Reason {
	case debugger.StoppedHalted:
		fmt.Println("machine halted")
	case debugger.StoppedBreakpoint:
		fmt.Printf("breakpoint %d hit\n", r.BreakIndex)
	}
}
