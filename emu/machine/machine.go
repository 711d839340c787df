/*
 * Synacor debugger - Machine: registers, stack and the step cycle.
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

// Package machine runs the step cycle: fetch, decode, execute, report.
// A Machine never blocks on its own; when it needs a byte of input it
// returns a StepOutcome asking the caller to supply one.
package machine

import (
	"errors"
	"fmt"

	"github.com/rcornwell/synacor-debugger/emu/memory"
	"github.com/rcornwell/synacor-debugger/emu/opcode"
)

// ErrEmptyStack is returned by Pop when the stack has nothing to pop.
// Ret on an empty stack is not an error: it halts the machine instead.
var ErrEmptyStack = errors.New("stack is empty")

const wordMask = 0x7FFF // arithmetic wraps modulo wordMask+1
const mask15 = 0x7FFF   // mask used by `not`

// OutcomeKind distinguishes the four shapes a step can produce.
type OutcomeKind int

const (
	Continue OutcomeKind = iota
	Output
	Input
	Halted
)

// StepOutcome reports what a single Step call did. OutByte is valid only
// for Output; InReg is valid only for Input.
type StepOutcome struct {
	Kind    OutcomeKind
	OutByte byte
	InReg   memory.Register
}

// Machine holds the VM's mutable state: memory, registers and the stack.
type Machine struct {
	Mem   *memory.Memory
	Regs  *memory.RegisterFile
	Stack []uint16
}

// New builds a fresh machine over the given ROM image.
func New(rom []byte) (*Machine, error) {
	mem, err := memory.NewMemory(rom)
	if err != nil {
		return nil, err
	}
	return &Machine{Mem: mem, Regs: memory.NewRegisterFile(), Stack: nil}, nil
}

// StackTop returns a pointer to the top-of-stack word for display
// purposes, or nil if the stack is empty. It never mutates the stack.
func (m *Machine) StackTop() *uint16 {
	if len(m.Stack) == 0 {
		return nil
	}
	v := m.Stack[len(m.Stack)-1]
	return &v
}

func (m *Machine) push(v uint16) {
	m.Stack = append(m.Stack, v)
}

func (m *Machine) pop() (uint16, error) {
	if len(m.Stack) == 0 {
		return 0, ErrEmptyStack
	}
	n := len(m.Stack) - 1
	v := m.Stack[n]
	m.Stack = m.Stack[:n]
	return v, nil
}

// PeekInstr decodes the instruction at the current IP without advancing
// it, by snapshotting and restoring the cursor around a real fetch.
func (m *Machine) PeekInstr() (opcode.OpCode, error) {
	saved := m.Mem.IP()
	op, err := opcode.Fetch(m.Mem)
	m.Mem.SetIP(saved)
	return op, err
}

// Step fetches and executes one instruction. When it needs an input
// byte, it reports Input and leaves the IP on the `in` instruction, so a
// later Step with a non-nil pending byte re-fetches and completes it.
func (m *Machine) Step(pending *byte) (StepOutcome, error) {
	ip := m.Mem.IP()
	op, err := opcode.Fetch(m.Mem)
	if err != nil {
		return StepOutcome{}, fmt.Errorf("at %s: %w", ip, err)
	}

	switch op.Kind {
	case opcode.Halt:
		return StepOutcome{Kind: Halted}, nil

	case opcode.Set:
		m.Regs.WriteValue(op.Reg, op.Val)
		return StepOutcome{Kind: Continue}, nil

	case opcode.Push:
		m.push(m.Regs.Read(op.Val))
		return StepOutcome{Kind: Continue}, nil

	case opcode.Pop:
		v, err := m.pop()
		if err != nil {
			return StepOutcome{}, fmt.Errorf("at %s: %w", ip, err)
		}
		m.Regs.WriteU16(op.Reg, v)
		return StepOutcome{Kind: Continue}, nil

	case opcode.Eq:
		a, b := m.Regs.Read(op.Val1), m.Regs.Read(op.Val2)
		m.Regs.WriteU16(op.Reg, boolWord(a == b))
		return StepOutcome{Kind: Continue}, nil

	case opcode.Gt:
		a, b := m.Regs.Read(op.Val1), m.Regs.Read(op.Val2)
		m.Regs.WriteU16(op.Reg, boolWord(a > b))
		return StepOutcome{Kind: Continue}, nil

	case opcode.Jmp:
		m.Mem.SetIP(memory.Address(m.Regs.Read(op.Addr)))
		return StepOutcome{Kind: Continue}, nil

	case opcode.Jt:
		if m.Regs.Read(op.Cond) != 0 {
			m.Mem.SetIP(memory.Address(m.Regs.Read(op.Addr)))
		}
		return StepOutcome{Kind: Continue}, nil

	case opcode.Jf:
		if m.Regs.Read(op.Cond) == 0 {
			m.Mem.SetIP(memory.Address(m.Regs.Read(op.Addr)))
		}
		return StepOutcome{Kind: Continue}, nil

	case opcode.Add:
		a, b := m.Regs.Read(op.Val1), m.Regs.Read(op.Val2)
		m.Regs.WriteU16(op.Reg, (a+b)%(wordMask+1))
		return StepOutcome{Kind: Continue}, nil

	case opcode.Mult:
		a, b := uint32(m.Regs.Read(op.Val1)), uint32(m.Regs.Read(op.Val2))
		m.Regs.WriteU16(op.Reg, uint16((a*b)%(wordMask+1)))
		return StepOutcome{Kind: Continue}, nil

	case opcode.Mod:
		a, b := m.Regs.Read(op.Val1), m.Regs.Read(op.Val2)
		m.Regs.WriteU16(op.Reg, a%b)
		return StepOutcome{Kind: Continue}, nil

	case opcode.And:
		a, b := m.Regs.Read(op.Val1), m.Regs.Read(op.Val2)
		m.Regs.WriteU16(op.Reg, a&b)
		return StepOutcome{Kind: Continue}, nil

	case opcode.Or:
		a, b := m.Regs.Read(op.Val1), m.Regs.Read(op.Val2)
		m.Regs.WriteU16(op.Reg, a|b)
		return StepOutcome{Kind: Continue}, nil

	case opcode.Not:
		a := m.Regs.Read(op.Val)
		m.Regs.WriteU16(op.Reg, (^a)&mask15)
		return StepOutcome{Kind: Continue}, nil

	case opcode.Rmem:
		addr, err := resolveAddr(m.Regs.Read(op.Addr))
		if err != nil {
			return StepOutcome{}, fmt.Errorf("at %s: %w", ip, err)
		}
		m.Regs.WriteU16(op.Reg, m.Mem.Read(addr))
		return StepOutcome{Kind: Continue}, nil

	case opcode.Wmem:
		addr, err := resolveAddr(m.Regs.Read(op.Addr))
		if err != nil {
			return StepOutcome{}, fmt.Errorf("at %s: %w", ip, err)
		}
		m.Mem.Write(addr, m.Regs.Read(op.Val))
		return StepOutcome{Kind: Continue}, nil

	case opcode.Call:
		target := memory.Address(m.Regs.Read(op.Addr))
		m.push(uint16(m.Mem.IP()))
		m.Mem.SetIP(target)
		return StepOutcome{Kind: Continue}, nil

	case opcode.Ret:
		v, err := m.pop()
		if err != nil {
			return StepOutcome{Kind: Halted}, nil
		}
		m.Mem.SetIP(memory.Address(v))
		return StepOutcome{Kind: Continue}, nil

	case opcode.Out:
		return StepOutcome{Kind: Output, OutByte: byte(m.Regs.Read(op.Cond))}, nil

	case opcode.In:
		if pending == nil {
			// Rewind so the next Step call re-fetches this same
			// instruction once input is available.
			m.Mem.SetIP(ip)
			return StepOutcome{Kind: Input, InReg: op.Reg}, nil
		}
		m.Regs.WriteU16(op.Reg, uint16(*pending))
		return StepOutcome{Kind: Continue}, nil

	case opcode.Noop:
		return StepOutcome{Kind: Continue}, nil

	default:
		return StepOutcome{}, fmt.Errorf("at %s: %w", ip, opcode.ErrInvalidOpCode)
	}
}

// resolveAddr rejects operand addresses naming a register-reference
// slot: rmem/wmem only ever index the addressable word range.
func resolveAddr(u uint16) (memory.Address, error) {
	if u > uint16(memory.MaxAddr) {
		return 0, fmt.Errorf("%w: 0x%04x", memory.ErrInvalidAddr, u)
	}
	return memory.Address(u), nil
}

func boolWord(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}
