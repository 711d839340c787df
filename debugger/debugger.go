/*
 * Synacor debugger - Debugger facade.
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

// Package debugger is the single facade the command layer drives: it
// owns the current execution State, the breakpoint list and the trace
// sink, and exposes one method per debugger operation (step, continue,
// examine, breakpoint management, save/load, tracing). The command layer
// never touches emu/state directly.
package debugger

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rcornwell/synacor-debugger/emu/breakpoint"
	"github.com/rcornwell/synacor-debugger/emu/machine"
	"github.com/rcornwell/synacor-debugger/emu/memory"
	"github.com/rcornwell/synacor-debugger/emu/opcode"
	"github.com/rcornwell/synacor-debugger/emu/save"
	"github.com/rcornwell/synacor-debugger/emu/state"
)

// StopReason explains why Continue or Step stopped running.
type StopReason int

const (
	StoppedHalted StopReason = iota
	StoppedStalled
	StoppedBreakpoint
	StoppedStepCount
)

// RunResult reports what happened over a Step/Continue call: the bytes
// written by any `out` instructions executed along the way, and why
// execution stopped.
type RunResult struct {
	Output     []byte
	Reason     StopReason
	BreakIndex int // valid when Reason == StoppedBreakpoint
}

// Debugger is the facade used by the command layer. It is not
// goroutine-safe; the command loop drives it from a single goroutine.
type Debugger struct {
	vm          state.State
	breakpoints *breakpoint.List
	trace       io.Writer
	traceFile   *os.File
	log         *slog.Logger
}

// New builds a Debugger over a freshly loaded ROM image.
func New(rom []byte, log *slog.Logger) (*Debugger, error) {
	vm, err := machine.New(rom)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	log.Debug("machine built", "romBytes", len(rom))
	return &Debugger{
		vm:          state.NewRunning(vm),
		breakpoints: breakpoint.NewList(),
		log:         log,
	}, nil
}

// IsHalted reports whether the underlying machine has halted.
func (d *Debugger) IsHalted() bool {
	return state.IsHalted(d.vm)
}

// IsStalled reports whether the underlying machine is waiting for
// input, and if so, which register the byte will land in.
func (d *Debugger) IsStalled() (memory.Register, bool) {
	if s, ok := d.vm.(state.Stalled); ok {
		return s.WaitingReg(), true
	}
	return 0, false
}

// IP returns the current instruction pointer, or ok=false once the
// machine has halted (there is no "current" instruction to report).
func (d *Debugger) IP() (memory.Address, bool) {
	if state.IsHalted(d.vm) {
		return 0, false
	}
	return d.vm.VM().Mem.IP(), true
}

// CurrentInstr decodes the instruction at the current IP without
// advancing it, for the `i` command, the trace sink, and breakpoint
// evaluation.
func (d *Debugger) CurrentInstr() (opcode.OpCode, opcode.DecodedOpCode, error) {
	vm := d.vm.VM()
	op, err := vm.PeekInstr()
	if err != nil {
		return opcode.OpCode{}, opcode.DecodedOpCode{}, err
	}
	decoded := opcode.Decode(op, vm.Regs, vm.StackTop())
	return op, decoded, nil
}

// Step executes exactly one instruction (or, if stalled, does nothing -
// input must arrive via Input first). It reports any output byte
// produced and whether a breakpoint fired for the instruction about to
// execute.
func (d *Debugger) Step() (RunResult, error) {
	if state.IsHalted(d.vm) {
		return RunResult{Reason: StoppedHalted}, state.ErrMachineHalted
	}
	if _, stalled := d.vm.(state.Stalled); stalled {
		return RunResult{Reason: StoppedStalled}, nil
	}
	res, err := d.stepOnce()
	if err != nil || res.Reason == StoppedHalted || res.Reason == StoppedStalled {
		return res, err
	}
	if idx, hit := d.checkBreakpoint(); hit {
		d.log.Debug("breakpoint hit", "index", idx)
		res.Reason, res.BreakIndex = StoppedBreakpoint, idx
	}
	return res, nil
}

// Input feeds one byte to a stalled machine, resuming execution.
func (d *Debugger) Input(b byte) (RunResult, error) {
	s, ok := d.vm.(state.Stalled)
	if !ok {
		return RunResult{}, state.ErrNotStalled
	}
	d.traceInstr()
	next, out, err := s.Feed(b)
	if err != nil {
		return RunResult{}, err
	}
	d.vm = next
	return d.resultFor(out), nil
}

func (d *Debugger) stepOnce() (RunResult, error) {
	r, ok := d.vm.(state.Running)
	if !ok {
		return RunResult{}, state.ErrMachineHalted
	}
	d.traceInstr()
	next, out, err := r.Step()
	if err != nil {
		return RunResult{}, err
	}
	d.vm = next
	return d.resultFor(out), nil
}

func (d *Debugger) resultFor(out machine.StepOutcome) RunResult {
	switch out.Kind {
	case machine.Output:
		return RunResult{Output: []byte{out.OutByte}, Reason: StoppedStepCount}
	case machine.Halted:
		return RunResult{Reason: StoppedHalted}
	case machine.Input:
		return RunResult{Reason: StoppedStalled}
	default:
		return RunResult{Reason: StoppedStepCount}
	}
}

// StepN executes up to n instructions, stopping early on halt, stall or
// breakpoint. It is also the implementation of the bare `s` command
// (n == 1). The breakpoint check runs after each step against the
// instruction that is now about to execute, so the triggering
// instruction has not yet run when control returns, and resuming from a
// hit does not re-trigger on the spot.
func (d *Debugger) StepN(n int) (RunResult, error) {
	var output []byte
	for i := 0; i < n; i++ {
		if state.IsHalted(d.vm) {
			return RunResult{Output: output, Reason: StoppedHalted}, nil
		}
		if _, stalled := d.vm.(state.Stalled); stalled {
			return RunResult{Output: output, Reason: StoppedStalled}, nil
		}
		res, err := d.stepOnce()
		if err != nil {
			return RunResult{Output: output}, err
		}
		output = append(output, res.Output...)
		if res.Reason == StoppedHalted || res.Reason == StoppedStalled {
			return RunResult{Output: output, Reason: res.Reason}, nil
		}
		if idx, hit := d.checkBreakpoint(); hit {
			d.log.Debug("breakpoint hit", "index", idx)
			return RunResult{Output: output, Reason: StoppedBreakpoint, BreakIndex: idx}, nil
		}
	}
	return RunResult{Output: output, Reason: StoppedStepCount}, nil
}

// Continue runs until halt, stall, or a breakpoint fires.
func (d *Debugger) Continue() (RunResult, error) {
	var output []byte
	for {
		if state.IsHalted(d.vm) {
			return RunResult{Output: output, Reason: StoppedHalted}, nil
		}
		if _, stalled := d.vm.(state.Stalled); stalled {
			return RunResult{Output: output, Reason: StoppedStalled}, nil
		}
		res, err := d.stepOnce()
		if err != nil {
			return RunResult{Output: output}, err
		}
		output = append(output, res.Output...)
		if res.Reason == StoppedHalted || res.Reason == StoppedStalled {
			return RunResult{Output: output, Reason: res.Reason}, nil
		}
		if idx, hit := d.checkBreakpoint(); hit {
			d.log.Debug("breakpoint hit", "index", idx)
			return RunResult{Output: output, Reason: StoppedBreakpoint, BreakIndex: idx}, nil
		}
	}
}

func (d *Debugger) checkBreakpoint() (int, bool) {
	r, ok := d.vm.(state.Running)
	if !ok {
		return 0, false
	}
	vm := r.VM()
	ip := vm.Mem.IP()
	op, decoded, err := d.CurrentInstr()
	if err != nil {
		return 0, false
	}
	idx := d.breakpoints.FirstMatch(ip, op, decoded)
	if idx < 0 {
		return 0, false
	}
	return idx, true
}

// ExamineMemory returns the byte range named by spec, e.g. "0x10",
// "0x10..0x20".
func (d *Debugger) ExamineMemory(spec string) ([]byte, error) {
	r, err := memory.ParseAddrRange(spec)
	if err != nil {
		return nil, err
	}
	return d.vm.VM().Mem.GetRange(r), nil
}

// ExamineRegisters returns a snapshot of all eight registers.
func (d *Debugger) ExamineRegisters() [8]uint16 {
	return d.vm.VM().Regs.All()
}

// ExamineStack returns the stack, bottom-first (index 0 is the oldest
// entry).
func (d *Debugger) ExamineStack() []uint16 {
	return d.vm.VM().Stack
}

// WriteRegister sets reg to the decoded value of valSpec ("42",
// "0x2a", "b101010").
func (d *Debugger) WriteRegister(reg memory.Register, valSpec string) error {
	v, err := memory.ParseValue(valSpec)
	if err != nil {
		return err
	}
	d.vm.VM().Regs.WriteValue(reg, v)
	return nil
}

// AddBreakpoint parses and installs a breakpoint, returning its index.
func (d *Debugger) AddBreakpoint(args []string) (int, error) {
	bp, err := breakpoint.Parse(args)
	if err != nil {
		return 0, err
	}
	idx := d.breakpoints.Add(bp)
	d.log.Debug("breakpoint added", "index", idx, "breakpoint", bp.String())
	return idx, nil
}

// ListBreakpoints returns the installed breakpoints in insertion order.
func (d *Debugger) ListBreakpoints() []breakpoint.Breakpoint {
	return d.breakpoints.All()
}

// DeleteBreakpoint removes the breakpoint at index, or every breakpoint
// if index < 0.
func (d *Debugger) DeleteBreakpoint(index int) error {
	return d.breakpoints.Delete(index)
}

// DumpMemory writes the whole used memory image to path.
func (d *Debugger) DumpMemory(path string) error {
	vm := d.vm.VM()
	image := vm.Mem.Bytes()[:vm.Mem.UsedBytes()]
	return os.WriteFile(path, image, 0o644)
}

// ScanStrings walks a scratch copy of memory from start as if it were
// pure instruction stream, collecting the immediate byte of every `out`
// it decodes and skipping everything else. Data gets misread as code
// along the way; the result is a lossy "what might this program print"
// view, not a disassembly. The walk ends at the first undecodable word
// or when the cursor wraps past the top of memory.
func (d *Debugger) ScanStrings(start memory.Address) ([]byte, error) {
	vm := d.vm.VM()
	scratch, err := memory.NewMemory(vm.Mem.Bytes()[:vm.Mem.UsedBytes()])
	if err != nil {
		return nil, err
	}
	scratch.SetIP(start)
	rf := memory.NewRegisterFile()
	*rf = *vm.Regs

	var out []byte
	for {
		at := scratch.IP()
		op, err := opcode.Fetch(scratch)
		if err != nil {
			break
		}
		if scratch.IP() <= at {
			break
		}
		if op.Kind == opcode.Out {
			out = append(out, byte(rf.Read(op.Cond)))
		}
	}
	return out, nil
}

// SaveTo writes the current state to path.
func (d *Debugger) SaveTo(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := save.Save(f, d.vm); err != nil {
		return err
	}
	d.log.Info("vm state saved", "path", path)
	return nil
}

// LoadFrom replaces the current state with the snapshot at path.
func (d *Debugger) LoadFrom(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	s, err := save.Load(f)
	if err != nil {
		return err
	}
	d.vm = s
	d.log.Info("vm state loaded", "path", path)
	return nil
}

// SetTraceFile redirects traced output to path, replacing any previous
// trace sink; an empty path turns tracing off.
func (d *Debugger) SetTraceFile(path string) error {
	if d.traceFile != nil {
		d.traceFile.Close()
		d.traceFile = nil
		d.trace = nil
	}
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	d.traceFile = f
	d.trace = bufio.NewWriter(f)
	return nil
}

// SetTraceStdout directs traced output to stdout.
func (d *Debugger) SetTraceStdout() {
	if d.traceFile != nil {
		d.traceFile.Close()
		d.traceFile = nil
	}
	d.trace = os.Stdout
}

// traceInstr writes the instruction about to execute to the trace sink,
// one line per step. A decode failure is the stepping path's problem to
// report; the trace just goes quiet for that step.
func (d *Debugger) traceInstr() {
	if d.trace == nil {
		return
	}
	ip, ok := d.IP()
	if !ok {
		return
	}
	op, decoded, err := d.CurrentInstr()
	if err != nil {
		return
	}
	fmt.Fprintf(d.trace, "%s: %s\n", ip, FormatInstr(op, decoded))
	if bw, ok := d.trace.(*bufio.Writer); ok {
		bw.Flush()
	}
}

// FormatInstr renders the current instruction for the `i` command and
// the trace sink: the raw mnemonic, and for call/ret, the resolved
// target address alongside it.
func FormatInstr(op opcode.OpCode, decoded opcode.DecodedOpCode) string {
	var sb strings.Builder
	sb.WriteString(op.String())
	switch op.Kind {
	case opcode.Call:
		fmt.Fprintf(&sb, "  ; -> %s", decoded.Addr)
	case opcode.Ret:
		if decoded.RetTarget != nil {
			fmt.Fprintf(&sb, "  ; -> %s", *decoded.RetTarget)
		} else {
			sb.WriteString("  ; empty stack, halts")
		}
	}
	return sb.String()
}
