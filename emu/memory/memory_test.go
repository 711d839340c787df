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

import "testing"

func TestNewMemoryRejectsOddSize(t *testing.T) {
	if _, err := NewMemory(make([]byte, 3)); err == nil {
		t.Error("expected an error for an odd-length ROM image")
	}
	if _, err := NewMemory(make([]byte, MaxBytes+2)); err == nil {
		t.Error("expected an error for an oversized ROM image")
	}
}

func TestMemoryReadWritePreservesIP(t *testing.T) {
	m, err := NewMemory(nil)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	m.SetIP(10)
	m.Write(5, 0xBEEF)
	if got := m.IP(); got != 10 {
		t.Errorf("Write moved IP to %s, want unchanged at 10", got)
	}
	if got := m.Read(5); got != 0xBEEF {
		t.Errorf("Read(5) = 0x%04x, want 0xBEEF", got)
	}
	if got := m.IP(); got != 10 {
		t.Errorf("Read moved IP to %s, want unchanged at 10", got)
	}
}

func TestMemoryNextU16Advances(t *testing.T) {
	rom := make([]byte, 8)
	rom[0], rom[1] = 0x01, 0x00
	rom[2], rom[3] = 0x02, 0x00
	m, err := NewMemory(rom)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	if got := m.NextU16(); got != 1 {
		t.Errorf("first NextU16 = %d, want 1", got)
	}
	if got := m.NextU16(); got != 2 {
		t.Errorf("second NextU16 = %d, want 2", got)
	}
	if got := m.IP(); got != 2 {
		t.Errorf("IP after two NextU16 calls = %s, want 0x0002", got)
	}
}

func TestMemoryCursorWrapsAtTopOfAddressSpace(t *testing.T) {
	m, err := NewMemory(nil)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	m.SetIP(MaxAddr)
	m.NextU16()
	if got := m.IP(); got != 0 {
		t.Errorf("IP after reading the last word = %s, want wrap to 0x0000", got)
	}
	m.SetIP(MaxAddr + 1)
	if got := m.IP(); got != 0 {
		t.Errorf("SetIP past the address space left IP at %s, want 0x0000", got)
	}
}

func TestMemoryMaxUsedTracksWrites(t *testing.T) {
	m, err := NewMemory(nil)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	if m.MaxUsed() != 0 {
		t.Fatalf("MaxUsed of empty memory = %s, want 0", m.MaxUsed())
	}
	m.Write(100, 1)
	if m.MaxUsed() != 100 {
		t.Errorf("MaxUsed after Write(100, ...) = %s, want 100", m.MaxUsed())
	}
	if got, want := m.UsedBytes(), uint16(202); got != want {
		t.Errorf("UsedBytes() = %d, want %d", got, want)
	}
}

func TestParseAddrRange(t *testing.T) {
	r, err := ParseAddrRange("0x10..0x20")
	if err != nil {
		t.Fatalf("ParseAddrRange: %v", err)
	}
	if r.Start() != 0x10 {
		t.Errorf("Start() = %d, want 0x10", r.Start())
	}

	// A reversed pair is swapped into order.
	r, err = ParseAddrRange("0x20..0x10")
	if err != nil {
		t.Fatalf("ParseAddrRange: %v", err)
	}
	if r.Start() != 0x10 {
		t.Errorf("Start() of reversed range = %d, want 0x10", r.Start())
	}

	r, err = ParseAddrRange("0x5")
	if err != nil {
		t.Fatalf("ParseAddrRange single address: %v", err)
	}
	if r.Start() != 5 {
		t.Errorf("Start() of bare address = %d, want 5", r.Start())
	}
}

func TestGetRangeBareAddressIsOneWord(t *testing.T) {
	rom := make([]byte, 10)
	m, err := NewMemory(rom)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	r, err := ParseAddrRange("0")
	if err != nil {
		t.Fatalf("ParseAddrRange: %v", err)
	}
	got := m.GetRange(r)
	if len(got) != 2 {
		t.Errorf("GetRange(\"0\") length = %d, want 2", len(got))
	}
}
