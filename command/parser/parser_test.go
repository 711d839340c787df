/*
 * Synacor debugger - Command parser.
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
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/rcornwell/synacor-debugger/debugger"
)

func newTestDebugger(t *testing.T, words ...uint16) *debugger.Debugger {
	t.Helper()
	rom := make([]byte, len(words)*2)
	for i, w := range words {
		binary.LittleEndian.PutUint16(rom[i*2:], w)
	}
	dbg, err := debugger.New(rom, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("debugger.New: %v", err)
	}
	return dbg
}

func TestProcessCommandUnknown(t *testing.T) {
	dbg := newTestDebugger(t, 0)
	if _, err := ProcessCommand("frobnicate", dbg); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("unknown command returned %v, want ErrUnknownCommand", err)
	}
}

func TestProcessCommandEmptyLineIsNoOp(t *testing.T) {
	dbg := newTestDebugger(t, 0)
	quit, err := ProcessCommand("   ", dbg)
	if err != nil || quit {
		t.Errorf("blank line = (%v, %v), want no-op", quit, err)
	}
}

func TestProcessCommandQuit(t *testing.T) {
	dbg := newTestDebugger(t, 0)
	quit, err := ProcessCommand("q", dbg)
	if err != nil {
		t.Fatalf("q: %v", err)
	}
	if !quit {
		t.Error("q should report quit")
	}
}

func TestBreakpointCommands(t *testing.T) {
	dbg := newTestDebugger(t, 0)
	if _, err := ProcessCommand("b w r2", dbg); err != nil {
		t.Fatalf("b w r2: %v", err)
	}
	if _, err := ProcessCommand("b @ 0x10", dbg); err != nil {
		t.Fatalf("b @ 0x10: %v", err)
	}
	if got := len(dbg.ListBreakpoints()); got != 2 {
		t.Fatalf("breakpoint count = %d, want 2", got)
	}
	if _, err := ProcessCommand("bx 0", dbg); err != nil {
		t.Fatalf("bx 0: %v", err)
	}
	if got := len(dbg.ListBreakpoints()); got != 1 {
		t.Fatalf("breakpoint count after bx 0 = %d, want 1", got)
	}
	if _, err := ProcessCommand("bx *", dbg); err != nil {
		t.Fatalf("bx *: %v", err)
	}
	if got := len(dbg.ListBreakpoints()); got != 0 {
		t.Errorf("breakpoint count after bx * = %d, want 0", got)
	}
}

func TestWriteRegisterCommandBases(t *testing.T) {
	cases := []struct {
		line string
		want uint16
	}{
		{"w r0 42", 42},
		{"w r1 0x2a", 42},
		{"w r2 b101010", 42},
	}
	dbg := newTestDebugger(t, 0)
	for _, c := range cases {
		if _, err := ProcessCommand(c.line, dbg); err != nil {
			t.Errorf("%q: %v", c.line, err)
		}
	}
	regs := dbg.ExamineRegisters()
	for i := 0; i < 3; i++ {
		if regs[i] != 42 {
			t.Errorf("r%d = %d, want 42", i, regs[i])
		}
	}
}

func TestCompleteCmdPrefixes(t *testing.T) {
	matches := CompleteCmd("b")
	found := map[string]bool{}
	for _, m := range matches {
		found[m] = true
	}
	if !found["b "] || !found["bl "] || !found["bx "] {
		t.Errorf("CompleteCmd(\"b\") = %v, want b/bl/bx", matches)
	}
}
