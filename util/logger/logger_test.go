/*
 * Synacor debugger - slog handler with a file sink and stderr mirror.
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

package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestHandlerWritesToFileSink(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, nil, false))
	log.Info("machine built", "romBytes", 12)

	got := buf.String()
	if !strings.Contains(got, "INFO:") || !strings.Contains(got, "machine built") {
		t.Errorf("sink contents = %q, want level and message", got)
	}
	if !strings.Contains(got, "12") {
		t.Errorf("sink contents = %q, want the attr value", got)
	}
}

func TestHandlerLevelGate(t *testing.T) {
	var buf bytes.Buffer
	lv := new(slog.LevelVar)
	lv.Set(slog.LevelInfo)
	log := slog.New(NewHandler(&buf, &slog.HandlerOptions{Level: lv}, false))

	log.Debug("suppressed")
	if buf.Len() != 0 {
		t.Errorf("debug record leaked through an Info gate: %q", buf.String())
	}

	lv.Set(slog.LevelDebug)
	log.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("sink contents = %q, want the debug record", buf.String())
	}
}

func TestHandlerWithAttrsCarriesContext(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, nil, false))
	log.With("rom", "challenge.bin").Info("debugger started")
	if !strings.Contains(buf.String(), "challenge.bin") {
		t.Errorf("sink contents = %q, want the With attr", buf.String())
	}
}
