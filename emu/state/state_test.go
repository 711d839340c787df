/*
 * Synacor debugger - Three-state execution state machine.
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

package state

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/rcornwell/synacor-debugger/emu/machine"
)

func romOf(words ...uint16) []byte {
	b := make([]byte, len(words)*2)
	for i, w := range words {
		binary.LittleEndian.PutUint16(b[i*2:], w)
	}
	return b
}

func TestRunningStepToStalledToHalted(t *testing.T) {
	// in r0; halt
	m, err := machine.New(romOf(20, 32768, 0))
	if err != nil {
		t.Fatalf("machine.New: %v", err)
	}
	var s State = NewRunning(m)

	s, _, err = Step(s)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !IsStalled(s) {
		t.Fatalf("expected Stalled after an `in` instruction, got %T", s)
	}

	s, _, err = Feed(s, 'a')
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if IsHalted(s) {
		t.Fatal("feeding input for `in` should not halt; the following instruction is `halt`")
	}

	s, _, err = Step(s)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !IsHalted(s) {
		t.Fatalf("expected Halted after executing `halt`, got %T", s)
	}
}

func TestStepOnStalledIsRejected(t *testing.T) {
	m, err := machine.New(romOf(20, 32768))
	if err != nil {
		t.Fatalf("machine.New: %v", err)
	}
	s, _, err := Step(State(NewRunning(m)))
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if _, _, err := Step(s); !errors.Is(err, ErrNotStalled) {
		t.Errorf("Step on a Stalled machine returned %v, want ErrNotStalled", err)
	}
}

func TestFeedOnRunningIsRejected(t *testing.T) {
	m, err := machine.New(romOf(21))
	if err != nil {
		t.Fatalf("machine.New: %v", err)
	}
	s := State(NewRunning(m))
	if _, _, err := Feed(s, 'x'); !errors.Is(err, ErrNotStalled) {
		t.Errorf("Feed on a Running machine returned %v, want ErrNotStalled", err)
	}
}

func TestStepOnHaltedIsRejected(t *testing.T) {
	m, err := machine.New(romOf(0))
	if err != nil {
		t.Fatalf("machine.New: %v", err)
	}
	s, _, err := Step(State(NewRunning(m)))
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !IsHalted(s) {
		t.Fatal("expected Halted after `halt`")
	}
	if _, _, err := Step(s); !errors.Is(err, ErrMachineHalted) {
		t.Errorf("Step on a Halted machine returned %v, want ErrMachineHalted", err)
	}
}
