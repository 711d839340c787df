/*
 * Synacor debugger - Breakpoint taxonomy and trigger evaluation.
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

// Package breakpoint implements the four-way breakpoint taxonomy (at an
// address, on read/write/access of a target) and evaluates them against
// both the raw and decoded forms of a fetched instruction, since a
// register-indirect operand only reveals its real target after
// decoding.
package breakpoint

import (
	"errors"
	"fmt"

	"github.com/rcornwell/synacor-debugger/emu/memory"
	"github.com/rcornwell/synacor-debugger/emu/opcode"
)

// ErrInvalidBreakpointSpec is returned when a breakpoint command's
// arguments don't name a recognized kind or a parseable location.
var ErrInvalidBreakpointSpec = errors.New("invalid breakpoint specification")

// Kind distinguishes the four breakpoint shapes.
type Kind int

const (
	At Kind = iota
	Read
	Write
	Access
)

func (k Kind) String() string {
	switch k {
	case At:
		return "at"
	case Read:
		return "read"
	case Write:
		return "write"
	case Access:
		return "access"
	default:
		return "?"
	}
}

// Breakpoint is one entry in the debugger's ordered breakpoint list.
// At breakpoints watch an address being reached by the IP; the other
// three watch a Target being read, written, or either.
type Breakpoint struct {
	Kind   Kind
	Addr   memory.Address // valid when Kind == At
	Target memory.Target  // valid otherwise
}

func (b Breakpoint) String() string {
	if b.Kind == At {
		return fmt.Sprintf("at %s", b.Addr)
	}
	return fmt.Sprintf("%s %s", b.Kind, b.Target)
}

// Parse builds a Breakpoint from a "b" command's split arguments, e.g.
// ["at", "0x10"], ["read", "r0"], ["write", "0x2000"], ["access", "r3"].
func Parse(args []string) (Breakpoint, error) {
	if len(args) != 2 {
		return Breakpoint{}, fmt.Errorf("%w: expected \"<at|read|write|access> <loc>\", got %v", ErrInvalidBreakpointSpec, args)
	}
	kind, err := parseKind(args[0])
	if err != nil {
		return Breakpoint{}, err
	}
	if kind == At {
		addr, err := memory.ParseAddress(args[1])
		if err != nil {
			return Breakpoint{}, fmt.Errorf("%w: %s", ErrInvalidBreakpointSpec, err)
		}
		return Breakpoint{Kind: At, Addr: addr}, nil
	}
	tgt, err := memory.ParseTarget(args[1])
	if err != nil {
		return Breakpoint{}, fmt.Errorf("%w: %s", ErrInvalidBreakpointSpec, err)
	}
	return Breakpoint{Kind: kind, Target: tgt}, nil
}

func parseKind(s string) (Kind, error) {
	switch s {
	case "at", "pc", "@":
		return At, nil
	case "read", "r":
		return Read, nil
	case "write", "w":
		return Write, nil
	case "access", "a":
		return Access, nil
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidBreakpointSpec, s)
	}
}

// Triggers reports whether b fires for an instruction about to execute
// at ip, given both its raw form (op) and operand-resolved form
// (decoded). At breakpoints only ever look at ip; the other three
// consult both forms: the raw form catches register operands (e.g. a
// read of r0 by "push r0"), and the decoded form catches memory cells
// reached through a register (e.g. "rmem r0 r1" once r1's value is
// known).
func (b Breakpoint) Triggers(ip memory.Address, op opcode.OpCode, decoded opcode.DecodedOpCode) bool {
	switch b.Kind {
	case At:
		return ip == b.Addr
	case Read:
		return op.Reads(b.Target) || decoded.Reads(b.Target)
	case Write:
		return op.Writes(b.Target) || decoded.Writes(b.Target)
	case Access:
		return op.Accesses(b.Target) || decoded.Accesses(b.Target)
	default:
		return false
	}
}

// ReasonKind classifies why execution stopped.
type ReasonKind int

const (
	StillRunning ReasonKind = iota
	HitHalted
	HitStalled
	HitBreakpoint
)

// Reason explains why a run loop (the `c` or `s <n>` commands) stopped
// early. Index is valid only when Kind == HitBreakpoint.
type Reason struct {
	Kind  ReasonKind
	Index int
}

// List is an ordered set of breakpoints; evaluation is first-match-wins
// in insertion order, matching the order they're listed by `bl`.
type List struct {
	items []Breakpoint
}

// NewList returns an empty breakpoint list.
func NewList() *List {
	return &List{}
}

// Add appends bp, returning its index for later deletion.
func (l *List) Add(bp Breakpoint) int {
	l.items = append(l.items, bp)
	return len(l.items) - 1
}

// Delete removes the breakpoint at index, or all of them if index < 0.
func (l *List) Delete(index int) error {
	if index < 0 {
		l.items = nil
		return nil
	}
	if index >= len(l.items) {
		return fmt.Errorf("%w: no breakpoint %d", ErrInvalidBreakpointSpec, index)
	}
	l.items = append(l.items[:index], l.items[index+1:]...)
	return nil
}

// All returns the breakpoints in insertion order, for the `bl` command.
func (l *List) All() []Breakpoint {
	return l.items
}

// FirstMatch returns the index of the first breakpoint that triggers
// for the given fetch, or -1 if none do.
func (l *List) FirstMatch(ip memory.Address, op opcode.OpCode, decoded opcode.DecodedOpCode) int {
	for i, bp := range l.items {
		if bp.Triggers(ip, op, decoded) {
			return i
		}
	}
	return -1
}
