/*
 * Synacor debugger - Examine, breakpoint, and register-write commands.
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
	"fmt"
	"strconv"
	"strings"

	"github.com/rcornwell/synacor-debugger/debugger"
	"github.com/rcornwell/synacor-debugger/emu/memory"
	"github.com/rcornwell/synacor-debugger/util/hexdump"
)

// cmdExamine implements "x": a bare address/range dumps memory, "x s"
// dumps the stack, and "x r..." dumps one or all registers.
func cmdExamine(line *cmdLine, dbg *debugger.Debugger) (bool, error) {
	loc := line.word()
	if loc == "" {
		return false, fmt.Errorf("%w: location to examine", ErrMissingArgs)
	}
	switch {
	case loc == "s":
		return false, examineStack(line, dbg)
	case strings.HasPrefix(loc, "r"):
		return false, examineRegisters(loc, dbg)
	default:
		return false, examineMemory(loc, dbg)
	}
}

func examineMemory(loc string, dbg *debugger.Debugger) error {
	r, err := memory.ParseAddrRange(loc)
	if err != nil {
		return err
	}
	bytes, err := dbg.ExamineMemory(loc)
	if err != nil {
		return err
	}
	fmt.Print(hexdump.Format(r.Start()*2, bytes))
	return nil
}

func examineStack(line *cmdLine, dbg *debugger.Debugger) error {
	stack := dbg.ExamineStack()
	n := len(stack)
	if tok := line.word(); tok != "" {
		v, err := strconv.Atoi(tok)
		if err != nil || v < 0 {
			return fmt.Errorf("%w: invalid stack depth %q", ErrMissingArgs, tok)
		}
		if v < n {
			n = v
		}
	}
	for i := 0; i < n; i++ {
		word := stack[len(stack)-1-i]
		fmt.Printf("%04d: %s\n", i, registerValueString(word))
	}
	return nil
}

func examineRegisters(loc string, dbg *debugger.Debugger) error {
	regs := dbg.ExamineRegisters()
	if loc == "r" {
		for i, v := range regs {
			fmt.Printf("r%d: 0x%04x %d %s\n", i, v, v, registerValueString(v))
		}
		return nil
	}
	reg, err := memory.ParseRegister(strings.TrimPrefix(loc, "r"))
	if err != nil {
		return err
	}
	v := regs[reg]
	fmt.Printf("r%d: 0x%04x %d %s\n", reg, v, v, registerValueString(v))
	return nil
}

// registerValueString renders a raw register word the way this operand
// would be interpreted if it appeared in an instruction stream: as a
// literal, or as the register reference it would decode to.
func registerValueString(u uint16) string {
	v, err := memory.ValueFromWord(u)
	if err != nil {
		return "(out of range)"
	}
	return v.GoString()
}

func completeExamine(args []string) []string {
	if len(args) == 0 {
		return []string{"s", "r"}
	}
	return nil
}

// cmdBreak implements "b op loc": op is one of @/r/w/a, loc is a
// register name or a memory address.
func cmdBreak(line *cmdLine, dbg *debugger.Debugger) (bool, error) {
	args := line.args()
	if len(args) != 2 {
		return false, fmt.Errorf("%w: \"<@|r|w|a> <loc>\"", ErrMissingArgs)
	}
	idx, err := dbg.AddBreakpoint(args)
	if err != nil {
		return false, err
	}
	fmt.Printf("breakpoint %d set\n", idx)
	return false, nil
}

func completeBreak(args []string) []string {
	switch len(args) {
	case 0:
		return []string{"@", "r", "w", "a"}
	case 1:
		return []string{"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7"}
	default:
		return nil
	}
}

// cmdWrite implements "w rN val".
func cmdWrite(line *cmdLine, dbg *debugger.Debugger) (bool, error) {
	args := line.args()
	if len(args) != 2 {
		return false, fmt.Errorf("%w: \"rN val\"", ErrMissingArgs)
	}
	reg, err := memory.ParseRegister(strings.TrimPrefix(args[0], "r"))
	if err != nil {
		return false, err
	}
	if err := dbg.WriteRegister(reg, args[1]); err != nil {
		return false, err
	}
	return false, nil
}

func completeWrite(args []string) []string {
	if len(args) == 0 {
		return []string{"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7"}
	}
	return nil
}
