/*
 * Synacor debugger - Command handlers.
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

package parser

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rcornwell/synacor-debugger/debugger"
)

func printOutput(r debugger.RunResult) {
	if len(r.Output) > 0 {
		os.Stdout.Write(r.Output)
	}
	switch r.Reason {
	case debugger.StoppedHalted:
		fmt.Println("machine halted")
	case debugger.StoppedStalled:
		fmt.Println("machine stalled awaiting input (use the VM's own input prompt, or '!' to abort)")
	case debugger.StoppedBreakpoint:
		fmt.Printf("breakpoint %d hit\n", r.BreakIndex)
	}
}

func cmdContinue(_ *cmdLine, dbg *debugger.Debugger) (bool, error) {
	r, err := dbg.Continue()
	if err != nil {
		return false, err
	}
	printOutput(r)
	return false, nil
}

func cmdStep(line *cmdLine, dbg *debugger.Debugger) (bool, error) {
	n := 1
	if tok := line.word(); tok != "" {
		v, err := strconv.Atoi(tok)
		if err != nil || v < 1 {
			return false, fmt.Errorf("%w: invalid step count %q", ErrMissingArgs, tok)
		}
		n = v
	}
	r, err := dbg.StepN(n)
	if err != nil {
		return false, err
	}
	printOutput(r)
	return false, nil
}

func cmdInstr(_ *cmdLine, dbg *debugger.Debugger) (bool, error) {
	ip, ok := dbg.IP()
	if !ok {
		fmt.Println("machine halted")
		return false, nil
	}
	op, decoded, err := dbg.CurrentInstr()
	if err != nil {
		return false, err
	}
	fmt.Printf("%s: %s\n", ip, debugger.FormatInstr(op, decoded))
	return false, nil
}

func cmdDump(line *cmdLine, dbg *debugger.Debugger) (bool, error) {
	path := line.word()
	if path == "" {
		return false, fmt.Errorf("%w: output file", ErrMissingArgs)
	}
	return false, dbg.DumpMemory(path)
}

func cmdStrings(_ *cmdLine, dbg *debugger.Debugger) (bool, error) {
	bytes, err := dbg.ScanStrings(0)
	if err != nil {
		return false, err
	}
	var cur strings.Builder
	for _, b := range bytes {
		if b == '\n' {
			fmt.Println(cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(b)
	}
	if cur.Len() > 0 {
		fmt.Println(cur.String())
	}
	return false, nil
}

func cmdBreakList(_ *cmdLine, dbg *debugger.Debugger) (bool, error) {
	for i, bp := range dbg.ListBreakpoints() {
		fmt.Printf("%d: %s\n", i, bp)
	}
	return false, nil
}

func cmdBreakDelete(line *cmdLine, dbg *debugger.Debugger) (bool, error) {
	tok := line.word()
	if tok == "" {
		return false, fmt.Errorf("%w: breakpoint number or \"*\"", ErrMissingArgs)
	}
	if tok == "*" {
		return false, dbg.DeleteBreakpoint(-1)
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return false, fmt.Errorf("%w: invalid breakpoint number %q", ErrMissingArgs, tok)
	}
	return false, dbg.DeleteBreakpoint(n)
}

func cmdTrace(line *cmdLine, dbg *debugger.Debugger) (bool, error) {
	tok := line.word()
	switch tok {
	case "", "-":
		if tok == "-" {
			dbg.SetTraceStdout()
			fmt.Println("tracing instructions to stdout")
		} else {
			_ = dbg.SetTraceFile("")
			fmt.Println("instruction tracing disabled")
		}
		return false, nil
	default:
		if err := dbg.SetTraceFile(tok); err != nil {
			return false, err
		}
		fmt.Printf("tracing instructions to %s\n", tok)
		return false, nil
	}
}

func cmdSave(line *cmdLine, dbg *debugger.Debugger) (bool, error) {
	path := line.word()
	if path == "" {
		return false, fmt.Errorf("%w: output file", ErrMissingArgs)
	}
	return false, dbg.SaveTo(path)
}

func cmdLoad(line *cmdLine, dbg *debugger.Debugger) (bool, error) {
	path := line.word()
	if path == "" {
		return false, fmt.Errorf("%w: input file", ErrMissingArgs)
	}
	return false, dbg.LoadFrom(path)
}

func cmdQuit(_ *cmdLine, _ *debugger.Debugger) (bool, error) {
	return true, nil
}

func cmdHelp(_ *cmdLine, _ *debugger.Debugger) (bool, error) {
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	for _, c := range cmdTable {
		fmt.Fprintf(w, "%-2s  %s\n", c.name, c.help)
	}
	return false, nil
}
