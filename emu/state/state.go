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

// Package state wraps a Machine in one of three legal states - Running,
// Stalled, Halted - so that illegal transitions (stepping a halted
// machine, feeding input to one that isn't waiting for it) can't be
// expressed. Every transition consumes the old state and returns a new
// one; nothing mutates a state value in place.
package state

import (
	"errors"

	"github.com/rcornwell/synacor-debugger/emu/machine"
	"github.com/rcornwell/synacor-debugger/emu/memory"
)

// ErrMachineHalted is returned by any attempt to step or feed input to
// a machine that has already halted.
var ErrMachineHalted = errors.New("machine has halted")

// ErrNotStalled is returned by Feed when the machine isn't waiting on
// input.
var ErrNotStalled = errors.New("machine is not waiting for input")

// State is implemented by Running, Stalled and Halted. VM gives
// inspection-only access to the underlying machine; every state
// supports examine/poke/serialize uniformly through it.
type State interface {
	VM() *machine.Machine
	stateMarker()
}

// Running is a machine ready to execute its next instruction.
type Running struct {
	vm *machine.Machine
}

// NewRunning wraps a freshly built machine as Running.
func NewRunning(m *machine.Machine) Running {
	return Running{vm: m}
}

// NewStalled reconstructs a Stalled state directly, used by the save
// codec when restoring a snapshot without re-executing the pending
// `in`.
func NewStalled(m *machine.Machine, reg memory.Register) Stalled {
	return Stalled{vm: m, reg: reg}
}

// NewHalted reconstructs a Halted state directly, used by the save
// codec.
func NewHalted(m *machine.Machine) Halted {
	return Halted{vm: m}
}

func (r Running) VM() *machine.Machine { return r.vm }
func (r Running) stateMarker()         {}

// Step executes one instruction. It returns the next state (Running
// again, Stalled if the instruction was `in`, or Halted) along with the
// outcome that produced the transition.
func (r Running) Step() (State, machine.StepOutcome, error) {
	out, err := r.vm.Step(nil)
	if err != nil {
		return r, machine.StepOutcome{}, err
	}
	switch out.Kind {
	case machine.Halted:
		return Halted{vm: r.vm}, out, nil
	case machine.Input:
		return Stalled{vm: r.vm, reg: out.InReg}, out, nil
	default:
		return r, out, nil
	}
}

// Stalled is a machine blocked on `in`, waiting for one input byte.
type Stalled struct {
	vm  *machine.Machine
	reg memory.Register
}

func (s Stalled) VM() *machine.Machine { return s.vm }
func (s Stalled) stateMarker()         {}

// WaitingReg returns the register the pending `in` will populate.
func (s Stalled) WaitingReg() memory.Register {
	return s.reg
}

// Feed supplies one input byte, resuming execution. The returned state
// is Running unless the resumed instruction itself halted or stalled
// again (which `in` never does, but the transition is expressed
// generally for symmetry with Running.Step).
func (s Stalled) Feed(b byte) (State, machine.StepOutcome, error) {
	out, err := s.vm.Step(&b)
	if err != nil {
		return s, machine.StepOutcome{}, err
	}
	switch out.Kind {
	case machine.Halted:
		return Halted{vm: s.vm}, out, nil
	case machine.Input:
		return Stalled{vm: s.vm, reg: out.InReg}, out, nil
	default:
		return Running{vm: s.vm}, out, nil
	}
}

// Halted is a machine that has executed `halt` or run `ret` on an empty
// stack. A step that fails with an error leaves the state as it was
// rather than halting it. Halted remains fully inspectable but can never
// step or accept input again.
type Halted struct {
	vm *machine.Machine
}

func (h Halted) VM() *machine.Machine { return h.vm }
func (h Halted) stateMarker()         {}

// Step advances any State by one instruction when legal. A Stalled
// machine cannot step without an input byte (use Feed), so it reports
// ErrNotStalled; stepping a Halted machine reports ErrMachineHalted.
func Step(s State) (State, machine.StepOutcome, error) {
	switch t := s.(type) {
	case Running:
		return t.Step()
	case Stalled:
		return s, machine.StepOutcome{}, ErrNotStalled
	case Halted:
		return s, machine.StepOutcome{}, ErrMachineHalted
	default:
		return s, machine.StepOutcome{}, ErrMachineHalted
	}
}

// Feed supplies an input byte to any State, failing unless it is
// Stalled.
func Feed(s State, b byte) (State, machine.StepOutcome, error) {
	switch t := s.(type) {
	case Stalled:
		return t.Feed(b)
	case Halted:
		return s, machine.StepOutcome{}, ErrMachineHalted
	default:
		return s, machine.StepOutcome{}, ErrNotStalled
	}
}

// IsHalted reports whether s is the Halted state.
func IsHalted(s State) bool {
	_, ok := s.(Halted)
	return ok
}

// IsStalled reports whether s is the Stalled state.
func IsStalled(s State) bool {
	_, ok := s.(Stalled)
	return ok
}
