/*
 * Synacor debugger - Decoded (operand-resolved) opcode representation.
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

package opcode

import (
	"fmt"

	"github.com/rcornwell/synacor-debugger/emu/memory"
)

// DecodedOpCode is an OpCode with every operand resolved through a
// register file: Values become plain words, address operands become
// Address. Breakpoints evaluate triggers against both the raw and the
// decoded form, since a Read/Write/Access target may only show up after
// resolution (e.g. "rmem r0 r1" only reveals the memory cell it loads
// once r1's contents are known).
type DecodedOpCode struct {
	Kind Kind
	Reg  memory.Register
	Val  uint16
	Val1 uint16
	Val2 uint16
	Addr memory.Address
	Cond uint16

	// RetTarget is populated only for Ret, and only when the stack was
	// non-empty at the time of decode; it lets a pretty-printer show
	// where a ret would resume without having to mutate the stack.
	RetTarget *memory.Address
}

// Decode resolves op's operands against rf. stackTop, when non-nil,
// supplies the value a Ret would pop, purely for display purposes; it is
// never mutated.
func Decode(op OpCode, rf *memory.RegisterFile, stackTop *uint16) DecodedOpCode {
	switch op.Kind {
	case Halt, Noop:
		return DecodedOpCode{Kind: op.Kind}
	case Set:
		return DecodedOpCode{Kind: Set, Reg: op.Reg, Val: rf.Read(op.Val)}
	case Push:
		return DecodedOpCode{Kind: Push, Val: rf.Read(op.Val)}
	case Pop:
		return DecodedOpCode{Kind: Pop, Reg: op.Reg}
	case Eq, Gt, Add, Mult, Mod, And, Or:
		return DecodedOpCode{Kind: op.Kind, Reg: op.Reg, Val1: rf.Read(op.Val1), Val2: rf.Read(op.Val2)}
	case Jmp:
		return DecodedOpCode{Kind: Jmp, Addr: memory.Address(rf.Read(op.Addr))}
	case Jt, Jf:
		return DecodedOpCode{Kind: op.Kind, Cond: rf.Read(op.Cond), Addr: memory.Address(rf.Read(op.Addr))}
	case Not:
		return DecodedOpCode{Kind: Not, Reg: op.Reg, Val: rf.Read(op.Val)}
	case Rmem:
		return DecodedOpCode{Kind: Rmem, Reg: op.Reg, Addr: memory.Address(rf.Read(op.Addr))}
	case Wmem:
		return DecodedOpCode{Kind: Wmem, Addr: memory.Address(rf.Read(op.Addr)), Val: rf.Read(op.Val)}
	case Call:
		return DecodedOpCode{Kind: Call, Addr: memory.Address(rf.Read(op.Addr))}
	case Ret:
		d := DecodedOpCode{Kind: Ret}
		if stackTop != nil {
			a := memory.Address(*stackTop)
			d.RetTarget = &a
		}
		return d
	case Out:
		return DecodedOpCode{Kind: Out, Cond: rf.Read(op.Cond)}
	case In:
		return DecodedOpCode{Kind: In, Reg: op.Reg}
	default:
		return DecodedOpCode{Kind: op.Kind}
	}
}

func (d DecodedOpCode) String() string {
	switch d.Kind {
	case Halt:
		return "halt"
	case Set:
		return fmt.Sprintf("set %s %d", d.Reg, d.Val)
	case Push:
		return fmt.Sprintf("push %d", d.Val)
	case Pop:
		return fmt.Sprintf("pop %s", d.Reg)
	case Eq:
		return fmt.Sprintf("eq %s %d %d", d.Reg, d.Val1, d.Val2)
	case Gt:
		return fmt.Sprintf("gt %s %d %d", d.Reg, d.Val1, d.Val2)
	case Jmp:
		return fmt.Sprintf("jmp %s", d.Addr)
	case Jt:
		return fmt.Sprintf("jt %d %s", d.Cond, d.Addr)
	case Jf:
		return fmt.Sprintf("jf %d %s", d.Cond, d.Addr)
	case Add:
		return fmt.Sprintf("add %s %d %d", d.Reg, d.Val1, d.Val2)
	case Mult:
		return fmt.Sprintf("mult %s %d %d", d.Reg, d.Val1, d.Val2)
	case Mod:
		return fmt.Sprintf("mod %s %d %d", d.Reg, d.Val1, d.Val2)
	case And:
		return fmt.Sprintf("and %s %d %d", d.Reg, d.Val1, d.Val2)
	case Or:
		return fmt.Sprintf("or %s %d %d", d.Reg, d.Val1, d.Val2)
	case Not:
		return fmt.Sprintf("not %s %d", d.Reg, d.Val)
	case Rmem:
		return fmt.Sprintf("rmem %s %s", d.Reg, d.Addr)
	case Wmem:
		return fmt.Sprintf("wmem %s %d", d.Addr, d.Val)
	case Call:
		return fmt.Sprintf("call %s", d.Addr)
	case Ret:
		if d.RetTarget != nil {
			return fmt.Sprintf("ret -> %s", *d.RetTarget)
		}
		return "ret -> (empty stack, halts)"
	case Out:
		if d.Cond < 256 {
			return fmt.Sprintf("out %q", rune(d.Cond))
		}
		return fmt.Sprintf("out %d", d.Cond)
	case In:
		return fmt.Sprintf("in %s", d.Reg)
	case Noop:
		return "noop"
	default:
		return "???"
	}
}

// Reads reports whether this resolved instruction reads tgt. Operand
// resolution has already happened by the time a DecodedOpCode exists, so
// a jump/call/write target address is not itself a read of that cell;
// only Rmem actually loads memory content from its resolved address.
func (d DecodedOpCode) Reads(tgt memory.Target) bool {
	switch d.Kind {
	case Rmem:
		return tgt.EqualsAddress(d.Addr)
	default:
		return false
	}
}

// Writes reports whether this resolved instruction writes tgt.
func (d DecodedOpCode) Writes(tgt memory.Target) bool {
	switch d.Kind {
	case Set, Pop, Eq, Gt, Add, Mult, Mod, And, Or, Not, In:
		return tgt.EqualsRegister(d.Reg)
	case Rmem:
		return tgt.EqualsRegister(d.Reg)
	case Wmem:
		return tgt.EqualsAddress(d.Addr)
	default:
		return false
	}
}

// Accesses reports whether this resolved instruction either reads or
// writes tgt.
func (d DecodedOpCode) Accesses(tgt memory.Target) bool {
	return d.Reads(tgt) || d.Writes(tgt)
}
