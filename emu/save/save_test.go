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

package save

import (
	"bytes"
	"testing"

	"github.com/rcornwell/synacor-debugger/emu/machine"
	"github.com/rcornwell/synacor-debugger/emu/state"
)

func TestSaveLoadRoundTripsRunning(t *testing.T) {
	m, err := machine.New([]byte{1, 0, 2, 0, 3, 0})
	if err != nil {
		t.Fatalf("machine.New: %v", err)
	}
	m.Regs.WriteU16(3, 42)
	m.Mem.SetIP(2)

	var buf bytes.Buffer
	if err := Save(&buf, state.NewRunning(m)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state.IsHalted(got) || state.IsStalled(got) {
		t.Fatalf("Load restored %T, want Running", got)
	}
	vm := got.VM()
	if vm.Mem.IP() != 2 {
		t.Errorf("restored IP = %s, want 0x0002", vm.Mem.IP())
	}
	if regs := vm.Regs.All(); regs[3] != 42 {
		t.Errorf("restored r3 = %d, want 42", regs[3])
	}
}

func TestSaveLoadRoundTripsStalledRegister(t *testing.T) {
	m, err := machine.New(nil)
	if err != nil {
		t.Fatalf("machine.New: %v", err)
	}
	var buf bytes.Buffer
	if err := Save(&buf, state.NewStalled(m, 5)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	st, ok := got.(state.Stalled)
	if !ok {
		t.Fatalf("Load restored %T, want Stalled", got)
	}
	if st.WaitingReg() != 5 {
		t.Errorf("restored waiting register = %s, want r5", st.WaitingReg())
	}
}

func TestSaveLoadRoundTripsStack(t *testing.T) {
	m, err := machine.New(nil)
	if err != nil {
		t.Fatalf("machine.New: %v", err)
	}
	m.Stack = []uint16{10, 20, 30}

	var buf bytes.Buffer
	if err := Save(&buf, state.NewRunning(m)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	stack := got.VM().Stack
	if len(stack) != 3 || stack[0] != 10 || stack[2] != 30 {
		t.Fatalf("restored stack = %v, want [10 20 30]", stack)
	}
}

func TestLoadRejectsTruncatedStream(t *testing.T) {
	if _, err := Load(bytes.NewReader([]byte{0, 0})); err == nil {
		t.Error("Load on a truncated stream should fail")
	}
}

func TestSaveStateTagBytes(t *testing.T) {
	// The wire format predates this tool: 0 is Stalled, 1 Running,
	// 2 Halted, and byte 1 carries the stalled register index.
	cases := []struct {
		name    string
		build   func(m *machine.Machine) state.State
		wantTag byte
		wantReg byte
	}{
		{"stalled", func(m *machine.Machine) state.State { return state.NewStalled(m, 3) }, 0, 3},
		{"running", func(m *machine.Machine) state.State { return state.NewRunning(m) }, 1, 0},
		{"halted", func(m *machine.Machine) state.State { return state.NewHalted(m) }, 2, 0},
	}
	for _, c := range cases {
		m, err := machine.New(nil)
		if err != nil {
			t.Fatalf("%s: machine.New: %v", c.name, err)
		}
		var buf bytes.Buffer
		if err := Save(&buf, c.build(m)); err != nil {
			t.Fatalf("%s: Save: %v", c.name, err)
		}
		b := buf.Bytes()
		if b[0] != c.wantTag || b[1] != c.wantReg {
			t.Errorf("%s: header = [%d %d], want [%d %d]", c.name, b[0], b[1], c.wantTag, c.wantReg)
		}
	}
}

func TestSaveEmitsPaddingBlock(t *testing.T) {
	// The historical padding block is memBytes/2 bytes, sitting right
	// after the memory image.
	m, err := machine.New([]byte{1, 0, 2, 0})
	if err != nil {
		t.Fatalf("machine.New: %v", err)
	}
	var buf bytes.Buffer
	if err := Save(&buf, state.NewRunning(m)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	b := buf.Bytes()
	// tag(1) + stalledReg(1) + ip(2) + memBytes(2) = 6 byte header.
	memBytes := int(b[4]) | int(b[5])<<8
	if memBytes != 4 {
		t.Fatalf("encoded memBytes = %d, want 4", memBytes)
	}
	wantLen := 6 + memBytes + memBytes/2 + 16 + 2
	if len(b) != wantLen {
		t.Errorf("encoded length = %d, want %d", len(b), wantLen)
	}
}
