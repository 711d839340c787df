/*
 * Synacor debugger - Word-addressed memory with cursor-style IP.
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

package memory

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// AddrRange is an inclusive word-address range with optionally omitted
// ends; an omitted start defaults to 0, an omitted end defaults to the
// memory's current high-water mark.
type AddrRange struct {
	start    Address
	end      Address
	hasStart bool
	hasEnd   bool
}

// ParseAddrRange parses "addr", "addr..addr", "addr..", "..addr" or "..".
// A reversed pair is swapped into order.
func ParseAddrRange(s string) (AddrRange, error) {
	if !strings.Contains(s, "..") {
		a, err := ParseAddress(s)
		if err != nil {
			return AddrRange{}, err
		}
		return AddrRange{start: a, hasStart: true, end: a, hasEnd: true}, nil
	}
	parts := strings.SplitN(s, "..", 2)
	r := AddrRange{}
	if parts[0] != "" {
		a, err := ParseAddress(parts[0])
		if err != nil {
			return AddrRange{}, err
		}
		r.start, r.hasStart = a, true
	}
	if parts[1] != "" {
		a, err := ParseAddress(parts[1])
		if err != nil {
			return AddrRange{}, err
		}
		r.end, r.hasEnd = a, true
	}
	if r.hasStart && r.hasEnd && r.start > r.end {
		r.start, r.end = r.end, r.start
	}
	return r, nil
}

// Start returns the range's starting word index, defaulting to 0.
func (r AddrRange) Start() int {
	if r.hasStart {
		return int(r.start)
	}
	return 0
}

// Memory is a 64 KiB word-addressed byte store with a word-aligned
// instruction-pointer cursor and a high-water mark over writes.
type Memory struct {
	bytes   [MaxBytes]byte
	ip      Address
	maxUsed Address
}

// NewMemory loads rom as the initial image, padding it to 64 KiB. It
// fails if rom exceeds MaxBytes or has odd length.
func NewMemory(rom []byte) (*Memory, error) {
	n := len(rom)
	if n > MaxBytes || n%2 != 0 {
		return nil, fmt.Errorf("%w: %d bytes provided", ErrInvalidMemorySize, n)
	}
	m := &Memory{}
	copy(m.bytes[:], rom)
	if n == 0 {
		m.maxUsed = 0
		return m, nil
	}
	m.maxUsed = Address(n/2 - 1)
	return m, nil
}

// UsedBytes returns the number of bytes spanned by the high-water mark,
// the minimal image size the save codec needs to emit.
func (m *Memory) UsedBytes() uint16 {
	return (uint16(m.maxUsed) + 1) * 2
}

// IP returns the current word-aligned instruction pointer.
func (m *Memory) IP() Address {
	return m.ip
}

// SetIP moves the cursor to addr, wrapping into the 15-bit address
// space so the cursor always names a real word.
func (m *Memory) SetIP(addr Address) {
	m.ip = addr & MaxAddr
}

// Read returns the word at addr, preserving the IP across the access.
func (m *Memory) Read(addr Address) uint16 {
	saved := m.ip
	m.ip = addr
	v := m.nextU16()
	m.ip = saved
	return v
}

// Write stores val at addr, preserving the IP across the access and
// advancing the high-water mark if addr was previously unwritten.
func (m *Memory) Write(addr Address, val uint16) {
	saved := m.ip
	m.ip = addr
	binary.LittleEndian.PutUint16(m.bytes[addr.ByteOffset():], val)
	m.ip = saved
	if addr > m.maxUsed {
		m.maxUsed = addr
	}
}

// nextU16 reads the word at the cursor and advances it by one word,
// wrapping at the top of the address space.
func (m *Memory) nextU16() uint16 {
	v := binary.LittleEndian.Uint16(m.bytes[m.ip.ByteOffset():])
	m.ip = (m.ip + 1) & MaxAddr
	return v
}

// NextU16 is the exported form of nextU16, used by the opcode decoder to
// fetch raw operand words without reaching into Memory's internals.
func (m *Memory) NextU16() uint16 {
	return m.nextU16()
}

// NextRegister reads the next operand word as a register reference.
func (m *Memory) NextRegister() (Register, error) {
	return RegisterFromWord(m.nextU16())
}

// NextValue reads the next operand word as a literal-or-register Value.
func (m *Memory) NextValue() (Value, error) {
	return ValueFromWord(m.nextU16())
}

// GetRange returns a byte slice view over the given word range, scaled
// to byte offsets; the end defaults to the high-water mark (or MaxAddr
// if the range starts beyond it).
func (m *Memory) GetRange(r AddrRange) []byte {
	s := r.Start()
	var e int
	if r.hasEnd {
		e = int(r.end)
	} else if s > int(m.maxUsed) {
		e = int(MaxAddr)
	} else {
		e = int(m.maxUsed)
	}
	return m.bytes[s*2 : (e+1)*2]
}

// Bytes returns the full backing store, used by the save codec.
func (m *Memory) Bytes() *[MaxBytes]byte {
	return &m.bytes
}

// MaxUsed returns the high-water mark.
func (m *Memory) MaxUsed() Address {
	return m.maxUsed
}

// SetMaxUsed restores the high-water mark, used when loading a save.
func (m *Memory) SetMaxUsed(a Address) {
	m.maxUsed = a
}
