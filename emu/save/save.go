/*
 * Synacor debugger - Binary save/load codec.
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

// Package save implements the VM's on-disk snapshot format: a fixed,
// little-endian layout carried over unchanged from the original tool so
// that save files remain interchangeable. That includes a historical
// quirk - a block of mem_bytes/2 unused padding bytes sitting between
// the memory image and the register block - which earlier versions
// emitted by accident and which every version since has had to keep
// emitting for the layout to stay self-describing.
package save

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/rcornwell/synacor-debugger/emu/machine"
	"github.com/rcornwell/synacor-debugger/emu/memory"
	"github.com/rcornwell/synacor-debugger/emu/state"
)

// ErrTruncated is returned by Load when the stream ends before a
// complete snapshot has been read.
var ErrTruncated = errors.New("save file is truncated")

// ErrCorrupt is returned by Load when a length field is internally
// inconsistent (e.g. an odd stack_bytes count).
var ErrCorrupt = errors.New("save file is corrupt")

type stateTag uint8

const (
	tagStalled stateTag = 0
	tagRunning stateTag = 1
	tagHalted  stateTag = 2
)

// Save writes s's full snapshot to w: state tag, stalled-register index,
// instruction pointer, memory image length and bytes, the historical
// padding block, all eight registers, and the stack bottom-first.
func Save(w io.Writer, s state.State) error {
	bw := bufio.NewWriter(w)

	tag, stalledReg := tagFor(s)
	if err := bw.WriteByte(byte(tag)); err != nil {
		return err
	}
	if err := bw.WriteByte(byte(stalledReg)); err != nil {
		return err
	}

	vm := s.VM()
	if err := writeU16(bw, uint16(vm.Mem.IP())); err != nil {
		return err
	}

	memBytes := vm.Mem.UsedBytes()
	if err := writeU16(bw, memBytes); err != nil {
		return err
	}
	image := vm.Mem.Bytes()[:memBytes]
	if _, err := bw.Write(image); err != nil {
		return err
	}

	// Historical quirk: mem_bytes/2 padding bytes, always zero.
	if _, err := bw.Write(make([]byte, memBytes/2)); err != nil {
		return err
	}

	for _, r := range vm.Regs.All() {
		if err := writeU16(bw, r); err != nil {
			return err
		}
	}

	stackBytes := uint16(len(vm.Stack)) * 2
	if err := writeU16(bw, stackBytes); err != nil {
		return err
	}
	for _, v := range vm.Stack {
		if err := writeU16(bw, v); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func tagFor(s state.State) (stateTag, uint8) {
	switch t := s.(type) {
	case state.Stalled:
		return tagStalled, uint8(t.WaitingReg())
	case state.Halted:
		return tagHalted, 0
	default:
		return tagRunning, 0
	}
}

// Load reads a snapshot written by Save and reconstructs its State.
func Load(r io.Reader) (state.State, error) {
	br := bufio.NewReader(r)

	tagByte, err := br.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	stalledRegByte, err := br.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	ip, err := readU16(br)
	if err != nil {
		return nil, err
	}

	memBytes, err := readU16(br)
	if err != nil {
		return nil, err
	}
	image := make([]byte, memBytes)
	if _, err := io.ReadFull(br, image); err != nil {
		return nil, fmt.Errorf("%w: memory image: %v", ErrTruncated, err)
	}

	// Skip the historical padding block; its contents are never
	// meaningful.
	if _, err := io.CopyN(io.Discard, br, int64(memBytes/2)); err != nil {
		return nil, fmt.Errorf("%w: padding block: %v", ErrTruncated, err)
	}

	var regs [8]uint16
	for i := range regs {
		regs[i], err = readU16(br)
		if err != nil {
			return nil, err
		}
	}

	stackBytes, err := readU16(br)
	if err != nil {
		return nil, err
	}
	if stackBytes%2 != 0 {
		return nil, fmt.Errorf("%w: odd stack_bytes %d", ErrCorrupt, stackBytes)
	}
	stack := make([]uint16, 0, stackBytes/2)
	for i := uint16(0); i < stackBytes/2; i++ {
		v, err := readU16(br)
		if err != nil {
			return nil, err
		}
		stack = append(stack, v)
	}

	mem, err := memory.NewMemory(image)
	if err != nil {
		return nil, err
	}
	mem.SetIP(memory.Address(ip))
	vm := &machine.Machine{
		Mem:   mem,
		Regs:  memory.LoadRegisterFile(regs),
		Stack: stack,
	}

	switch stateTag(tagByte) {
	case tagRunning:
		return state.NewRunning(vm), nil
	case tagStalled:
		reg, err := memory.RegisterFromWord(memory.RegisterBase + uint16(stalledRegByte))
		if err != nil {
			return nil, fmt.Errorf("%w: stalled register byte %d", ErrCorrupt, stalledRegByte)
		}
		return state.NewStalled(vm, reg), nil
	case tagHalted:
		return state.NewHalted(vm), nil
	default:
		return nil, fmt.Errorf("%w: unknown state tag %d", ErrCorrupt, tagByte)
	}
}

func writeU16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}
