/*
 * Synacor debugger - Command parser.
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

// Package parser implements the debugger's line-oriented command
// language: a small dispatch table keyed on the command's first word,
// plus a char-scanning cmdLine helper the way the teacher's own command
// console tokenizes device/option arguments.
package parser

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/rcornwell/synacor-debugger/debugger"
)

// ErrUnknownCommand is returned for an unrecognized first word.
var ErrUnknownCommand = errors.New("command not found")

// ErrMissingArgs is returned when a command needed more arguments than
// it was given.
var ErrMissingArgs = errors.New("missing arguments")

type cmdLine struct {
	line string
	pos  int
}

func newCmdLine(s string) *cmdLine {
	return &cmdLine{line: s}
}

func (l *cmdLine) skipSpace() {
	for l.pos < len(l.line) && l.line[l.pos] == ' ' {
		l.pos++
	}
}

func (l *cmdLine) isEOL() bool {
	return l.pos >= len(l.line)
}

// word returns the next whitespace-delimited token, advancing past it.
func (l *cmdLine) word() string {
	l.skipSpace()
	start := l.pos
	for l.pos < len(l.line) && l.line[l.pos] != ' ' {
		l.pos++
	}
	return l.line[start:l.pos]
}

// rest returns everything remaining on the line, trimmed.
func (l *cmdLine) rest() string {
	l.skipSpace()
	return strings.TrimSpace(l.line[l.pos:])
}

// args splits the remainder of the line into whitespace-delimited
// tokens, the way most of this grammar's commands take their
// arguments.
func (l *cmdLine) args() []string {
	r := l.rest()
	if r == "" {
		return nil
	}
	return strings.Fields(r)
}

type handler func(line *cmdLine, dbg *debugger.Debugger) (quit bool, err error)

type cmd struct {
	name     string
	help     string
	process  handler
	complete func(args []string) []string
}

var cmdTable []cmd

func init() {
	cmdTable = []cmd{
		{name: "c", help: "continue until breakpoint, halt, or stall", process: cmdContinue},
		{name: "s", help: "s [n] - step n instructions (default 1)", process: cmdStep},
		{name: "i", help: "print the current instruction", process: cmdInstr},
		{name: "x", help: "x addr[..addr] | x s [n] | x r[N] - examine memory/stack/registers",
			process: cmdExamine, complete: completeExamine},
		{name: "d", help: "d file - dump memory image to file", process: cmdDump},
		{name: "f", help: "scan memory for printable strings", process: cmdStrings},
		{name: "b", help: "b <@|r|w|a> <loc> - add a breakpoint", process: cmdBreak, complete: completeBreak},
		{name: "bl", help: "list breakpoints", process: cmdBreakList},
		{name: "bx", help: "bx <n>|* - delete a breakpoint, or all", process: cmdBreakDelete},
		{name: "w", help: "w rN val - write a register", process: cmdWrite, complete: completeWrite},
		{name: ">", help: "> [-|file] - trace instructions to stdout/file, or off", process: cmdTrace},
		{name: "v", help: "v file - save VM state", process: cmdSave},
		{name: "l", help: "l file - load VM state", process: cmdLoad},
		{name: "q", help: "quit the debugger", process: cmdQuit},
		{name: "h", help: "show this help", process: cmdHelp},
	}
}

func lookup(name string) *cmd {
	for i := range cmdTable {
		if cmdTable[i].name == name {
			return &cmdTable[i]
		}
	}
	return nil
}

// ProcessCommand dispatches one line of input against dbg. It reports
// quit=true only for the "q" command.
func ProcessCommand(line string, dbg *debugger.Debugger) (bool, error) {
	l := newCmdLine(line)
	name := l.word()
	if name == "" {
		return false, nil
	}
	c := lookup(name)
	if c == nil {
		return false, ErrUnknownCommand
	}
	slog.Debug("dispatching command", "command", name)
	return c.process(l, dbg)
}

// CompleteCmd drives liner's tab completion: command names when no
// command word is complete yet, or a per-command completer for its
// arguments.
func CompleteCmd(line string) []string {
	l := newCmdLine(line)
	name := l.word()

	if l.isEOL() && !strings.HasSuffix(line, " ") {
		var matches []string
		for _, c := range cmdTable {
			if strings.HasPrefix(c.name, name) {
				matches = append(matches, c.name+" ")
			}
		}
		return matches
	}

	c := lookup(name)
	if c == nil || c.complete == nil {
		return nil
	}
	return c.complete(l.args())
}
