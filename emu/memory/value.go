/*
 * Synacor debugger - Address, Register, Value and Target types.
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

// Package memory holds the VM's addressable state: the Address/Register/
// Value/Target operand vocabulary, the eight-register file, and the
// word-addressed byte store with its instruction-pointer cursor.
package memory

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxAddr is the highest legal word address.
const MaxAddr = Address(0x7FFF)

// RegisterBase is the first word value that denotes a register reference.
const RegisterBase = 32768

// MaxBytes is the size of the VM's byte-addressable memory.
const MaxBytes = 65536

// Address is a 15-bit word index into VM memory.
type Address uint16

// ParseAddress parses a decimal or 0x-prefixed hex address, rejecting
// anything above MaxAddr.
func ParseAddress(s string) (Address, error) {
	u, err := parseWord(s)
	if err != nil {
		return 0, err
	}
	if u > uint16(MaxAddr) {
		return 0, fmt.Errorf("%w: 0x%04x [0x0..0x7fff]", ErrInvalidAddr, u)
	}
	return Address(u), nil
}

func (a Address) String() string {
	return fmt.Sprintf("0x%04x", uint16(a))
}

// ByteOffset converts a word address to the byte offset used when
// indexing the memory image. The save file stores the IP as a word
// index, not as a byte offset.
func (a Address) ByteOffset() int {
	return int(a) * 2
}

// AddrFromByteOffset converts a byte position back to a word address.
func AddrFromByteOffset(off int) Address {
	return Address(off / 2)
}

// Register is an index in [0, 7] into the register file.
type Register uint8

// RegisterFromWord decodes a register reference word in [32768, 32775].
func RegisterFromWord(u uint16) (Register, error) {
	if u < RegisterBase || u > RegisterBase+7 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRegister, u)
	}
	return Register(u - RegisterBase), nil
}

// ParseRegister parses a bare decimal register index, e.g. "3".
func ParseRegister(s string) (Register, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil || n > 7 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidRegister, s)
	}
	return Register(n), nil
}

func (r Register) String() string {
	return fmt.Sprintf("r%d", uint8(r))
}

// Value is an operand that is either a literal word or a register
// reference; it must be resolved through a RegisterFile before use.
type Value struct {
	reg     Register
	literal uint16
	isReg   bool
}

// Literal constructs a literal operand.
func Literal(u uint16) Value {
	return Value{literal: u}
}

// FromRegister constructs a register-reference operand.
func FromRegister(r Register) Value {
	return Value{reg: r, isReg: true}
}

// ValueFromWord decodes an encoded operand word: literals occupy
// [0, 32767], register references [32768, 32775], anything else is
// invalid.
func ValueFromWord(u uint16) (Value, error) {
	switch {
	case u <= uint16(MaxAddr):
		return Literal(u), nil
	case u <= RegisterBase+7:
		r, err := RegisterFromWord(u)
		if err != nil {
			return Value{}, err
		}
		return FromRegister(r), nil
	default:
		return Value{}, fmt.Errorf("%w: %d", ErrInvalidValue, u)
	}
}

// ParseValue parses a register-write value in decimal, 0x-hex, or
// b-binary form, e.g. "0x2a", "b101010", "42".
func ParseValue(s string) (Value, error) {
	u, err := parseWord(s)
	if err != nil {
		return Value{}, err
	}
	return ValueFromWord(u)
}

// IsRegister reports whether the operand is a register reference.
func (v Value) IsRegister() bool {
	return v.isReg
}

// Register returns the referenced register; only meaningful when
// IsRegister is true.
func (v Value) Register() Register {
	return v.reg
}

func (v Value) String() string {
	if v.isReg {
		return v.reg.String()
	}
	return fmt.Sprintf("<%d>", v.literal)
}

// GoString renders the verbose form used by register dumps.
func (v Value) GoString() string {
	if v.isReg {
		return v.reg.String()
	}
	return fmt.Sprintf("<%d, 0x%04x>", v.literal, v.literal)
}

func parseWord(s string) (uint16, error) {
	var (
		n   uint64
		err error
	)
	switch {
	case strings.HasPrefix(s, "0x"):
		n, err = strconv.ParseUint(s[2:], 16, 16)
	case strings.HasPrefix(s, "b"):
		n, err = strconv.ParseUint(s[1:], 2, 16)
	default:
		n, err = strconv.ParseUint(s, 10, 16)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidValue, s)
	}
	return uint16(n), nil
}

// targetKind distinguishes the two addressable entities a breakpoint may
// watch.
type targetKind int

const (
	targetMem targetKind = iota
	targetReg
)

// Target is the location a breakpoint watches: either a memory address or
// a register.
type Target struct {
	kind targetKind
	addr Address
	reg  Register
}

// MemTarget builds a Target watching a memory address.
func MemTarget(a Address) Target {
	return Target{kind: targetMem, addr: a}
}

// RegTarget builds a Target watching a register.
func RegTarget(r Register) Target {
	return Target{kind: targetReg, reg: r}
}

// ParseTarget parses "rN" as a register target, anything else as an
// address target.
func ParseTarget(s string) (Target, error) {
	if strings.HasPrefix(s, "r") {
		r, err := ParseRegister(s[1:])
		if err != nil {
			return Target{}, err
		}
		return RegTarget(r), nil
	}
	a, err := ParseAddress(s)
	if err != nil {
		return Target{}, err
	}
	return MemTarget(a), nil
}

// IsMem reports whether the target watches a memory address.
func (t Target) IsMem() bool {
	return t.kind == targetMem
}

func (t Target) String() string {
	if t.kind == targetReg {
		return t.reg.String()
	}
	return t.addr.String()
}

// EqualsValue implements the comparison rule from the spec: Reg(r) ==
// FromRegister(r') iff r == r'; a memory target never equals a Value
// (literals aren't addressable, and a value never names an address).
func (t Target) EqualsValue(v Value) bool {
	return t.kind == targetReg && v.isReg && t.reg == v.reg
}

// EqualsRegister reports whether the target is exactly this register.
func (t Target) EqualsRegister(r Register) bool {
	return t.kind == targetReg && t.reg == r
}

// EqualsAddress reports whether the target is exactly this address.
func (t Target) EqualsAddress(a Address) bool {
	return t.kind == targetMem && t.addr == a
}
