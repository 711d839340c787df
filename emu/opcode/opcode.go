/*
 * Synacor debugger - Raw opcode representation, fetch and access analysis.
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

// Package opcode decodes the VM's 22-instruction set, keeping two shapes
// side by side: the raw OpCode (operands still Values, literal or
// register-backed) and the DecodedOpCode (operands resolved through a
// register file). Both implement access analysis so breakpoints can ask
// "does this instruction touch this Target" without running it.
package opcode

import (
	"fmt"

	"github.com/rcornwell/synacor-debugger/emu/memory"
)

// Kind identifies an opcode variant, numbered per the VM's wire encoding.
type Kind int

const (
	Halt Kind = iota
	Set
	Push
	Pop
	Eq
	Gt
	Jmp
	Jt
	Jf
	Add
	Mult
	Mod
	And
	Or
	Not
	Rmem
	Wmem
	Call
	Ret
	Out
	In
	Noop
)

// ErrInvalidOpCode is returned by Fetch when the opcode word doesn't name
// a known instruction.
var ErrInvalidOpCode = fmt.Errorf("invalid opcode")

// ErrNonLiteralOpCode is returned by Fetch when the opcode word is itself
// a register reference, which is never legal.
var ErrNonLiteralOpCode = fmt.Errorf("non-literal opcode")

// OpCode is the raw, not-yet-resolved form of a decoded instruction.
// Operand fields are populated according to Kind, as Fetch reads them;
// fields a variant has no operand for are left zero.
type OpCode struct {
	Kind Kind
	Reg  memory.Register
	Val  memory.Value
	Val1 memory.Value
	Val2 memory.Value
	Addr memory.Value
	Cond memory.Value
}

// Fetch reads one instruction from mem at the current IP, advancing it
// past the opcode word and any operand words the variant requires.
func Fetch(mem *memory.Memory) (OpCode, error) {
	instr, err := mem.NextValue()
	if err != nil {
		return OpCode{}, err
	}
	if instr.IsRegister() {
		return OpCode{}, fmt.Errorf("%w: attempted to use register %s as opcode", ErrNonLiteralOpCode, instr)
	}
	// The opcode word is a literal at this point; resolving it through
	// an empty register file yields the raw number.
	word := literalWord(instr)

	switch word {
	case 0:
		return OpCode{Kind: Halt}, nil
	case 1:
		reg, err := mem.NextRegister()
		if err != nil {
			return OpCode{}, err
		}
		val, err := mem.NextValue()
		if err != nil {
			return OpCode{}, err
		}
		return OpCode{Kind: Set, Reg: reg, Val: val}, nil
	case 2:
		val, err := mem.NextValue()
		if err != nil {
			return OpCode{}, err
		}
		return OpCode{Kind: Push, Val: val}, nil
	case 3:
		reg, err := mem.NextRegister()
		if err != nil {
			return OpCode{}, err
		}
		return OpCode{Kind: Pop, Reg: reg}, nil
	case 4, 5, 9, 10, 11, 12, 13:
		reg, err := mem.NextRegister()
		if err != nil {
			return OpCode{}, err
		}
		val1, err := mem.NextValue()
		if err != nil {
			return OpCode{}, err
		}
		val2, err := mem.NextValue()
		if err != nil {
			return OpCode{}, err
		}
		return OpCode{Kind: kindFor3Op(word), Reg: reg, Val1: val1, Val2: val2}, nil
	case 6:
		addr, err := mem.NextValue()
		if err != nil {
			return OpCode{}, err
		}
		return OpCode{Kind: Jmp, Addr: addr}, nil
	case 7, 8:
		cond, err := mem.NextValue()
		if err != nil {
			return OpCode{}, err
		}
		addr, err := mem.NextValue()
		if err != nil {
			return OpCode{}, err
		}
		k := Jt
		if word == 8 {
			k = Jf
		}
		return OpCode{Kind: k, Cond: cond, Addr: addr}, nil
	case 14:
		reg, err := mem.NextRegister()
		if err != nil {
			return OpCode{}, err
		}
		val, err := mem.NextValue()
		if err != nil {
			return OpCode{}, err
		}
		return OpCode{Kind: Not, Reg: reg, Val: val}, nil
	case 15:
		reg, err := mem.NextRegister()
		if err != nil {
			return OpCode{}, err
		}
		addr, err := mem.NextValue()
		if err != nil {
			return OpCode{}, err
		}
		return OpCode{Kind: Rmem, Reg: reg, Addr: addr}, nil
	case 16:
		addr, err := mem.NextValue()
		if err != nil {
			return OpCode{}, err
		}
		val, err := mem.NextValue()
		if err != nil {
			return OpCode{}, err
		}
		return OpCode{Kind: Wmem, Addr: addr, Val: val}, nil
	case 17:
		addr, err := mem.NextValue()
		if err != nil {
			return OpCode{}, err
		}
		return OpCode{Kind: Call, Addr: addr}, nil
	case 18:
		return OpCode{Kind: Ret}, nil
	case 19:
		c, err := mem.NextValue()
		if err != nil {
			return OpCode{}, err
		}
		return OpCode{Kind: Out, Cond: c}, nil
	case 20:
		reg, err := mem.NextRegister()
		if err != nil {
			return OpCode{}, err
		}
		return OpCode{Kind: In, Reg: reg}, nil
	case 21:
		return OpCode{Kind: Noop}, nil
	default:
		return OpCode{}, fmt.Errorf("%w: %d", ErrInvalidOpCode, word)
	}
}

func kindFor3Op(word uint16) Kind {
	switch word {
	case 4:
		return Eq
	case 5:
		return Gt
	case 9:
		return Add
	case 10:
		return Mult
	case 11:
		return Mod
	case 12:
		return And
	default:
		return Or
	}
}

// literalWord extracts the word behind a Value already checked to not
// be a register reference.
func literalWord(v memory.Value) uint16 {
	rf := memory.RegisterFile{}
	return rf.Read(v)
}

func (op OpCode) String() string {
	switch op.Kind {
	case Halt:
		return "halt"
	case Set:
		return fmt.Sprintf("set %s %s", op.Reg, op.Val)
	case Push:
		return fmt.Sprintf("push %s", op.Val)
	case Pop:
		return fmt.Sprintf("pop %s", op.Reg)
	case Eq:
		return fmt.Sprintf("eq %s %s %s", op.Reg, op.Val1, op.Val2)
	case Gt:
		return fmt.Sprintf("gt %s %s %s", op.Reg, op.Val1, op.Val2)
	case Jmp:
		return fmt.Sprintf("jmp %s", op.Addr)
	case Jt:
		return fmt.Sprintf("jt %s %s", op.Cond, op.Addr)
	case Jf:
		return fmt.Sprintf("jf %s %s", op.Cond, op.Addr)
	case Add:
		return fmt.Sprintf("add %s %s %s", op.Reg, op.Val1, op.Val2)
	case Mult:
		return fmt.Sprintf("mult %s %s %s", op.Reg, op.Val1, op.Val2)
	case Mod:
		return fmt.Sprintf("mod %s %s %s", op.Reg, op.Val1, op.Val2)
	case And:
		return fmt.Sprintf("and %s %s %s", op.Reg, op.Val1, op.Val2)
	case Or:
		return fmt.Sprintf("or %s %s %s", op.Reg, op.Val1, op.Val2)
	case Not:
		return fmt.Sprintf("not %s %s", op.Reg, op.Val)
	case Rmem:
		return fmt.Sprintf("rmem %s %s", op.Reg, op.Addr)
	case Wmem:
		return fmt.Sprintf("wmem %s %s", op.Addr, op.Val)
	case Call:
		return fmt.Sprintf("call %s", op.Addr)
	case Ret:
		return "ret"
	case Out:
		return fmt.Sprintf("out %s", op.Cond)
	case In:
		return fmt.Sprintf("in %s", op.Reg)
	case Noop:
		return "noop"
	default:
		return "???"
	}
}

// Reads reports whether this instruction, as written (before operand
// resolution), would read tgt.
func (op OpCode) Reads(tgt memory.Target) bool {
	switch op.Kind {
	case Set, Push, Not, Wmem:
		return tgt.EqualsValue(op.Val)
	case Eq, Gt, Add, Mult, Mod, And, Or:
		return tgt.EqualsValue(op.Val1) || tgt.EqualsValue(op.Val2)
	case Jmp, Call:
		return tgt.EqualsValue(op.Addr)
	case Jt, Jf:
		return tgt.EqualsValue(op.Cond) || tgt.EqualsValue(op.Addr)
	case Rmem:
		return tgt.EqualsValue(op.Addr)
	case Out:
		return tgt.EqualsValue(op.Cond)
	default:
		return false
	}
}

// Writes reports whether this instruction, as written, would write tgt.
func (op OpCode) Writes(tgt memory.Target) bool {
	switch op.Kind {
	case Set, Pop, Eq, Gt, Add, Mult, Mod, And, Or, Not, Rmem, In:
		return tgt.EqualsRegister(op.Reg)
	case Wmem:
		return tgt.EqualsValue(op.Addr)
	default:
		return false
	}
}

// Accesses reports whether this instruction either reads or writes tgt.
func (op OpCode) Accesses(tgt memory.Target) bool {
	return op.Reads(tgt) || op.Writes(tgt)
}
