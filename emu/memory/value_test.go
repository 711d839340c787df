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

package memory

import (
	"errors"
	"testing"
)

func TestParseAddress(t *testing.T) {
	cases := []struct {
		in      string
		want    Address
		wantErr bool
	}{
		{"0", 0, false},
		{"32767", 32767, false},
		{"0x7fff", 0x7fff, false},
		{"32768", 0, true},
		{"-1", 0, true},
		{"bogus", 0, true},
	}
	for _, c := range cases {
		got, err := ParseAddress(c.in)
		if c.wantErr {
			if !errors.Is(err, ErrInvalidAddr) && err == nil {
				t.Errorf("ParseAddress(%q): expected error, got nil", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAddress(%q): unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseAddress(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestValueFromWord(t *testing.T) {
	v, err := ValueFromWord(5)
	if err != nil || v.IsRegister() {
		t.Fatalf("ValueFromWord(5) = %+v, %v, want literal", v, err)
	}
	v, err = ValueFromWord(32768)
	if err != nil || !v.IsRegister() || v.Register() != 0 {
		t.Fatalf("ValueFromWord(32768) = %+v, %v, want register 0", v, err)
	}
	v, err = ValueFromWord(32775)
	if err != nil || !v.IsRegister() || v.Register() != 7 {
		t.Fatalf("ValueFromWord(32775) = %+v, %v, want register 7", v, err)
	}
	if _, err := ValueFromWord(32776); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("ValueFromWord(32776) error = %v, want ErrInvalidValue", err)
	}
}

func TestParseValueBases(t *testing.T) {
	cases := []struct {
		in   string
		want uint16
	}{
		{"42", 42},
		{"0x2a", 42},
		{"b101010", 42},
	}
	for _, c := range cases {
		v, err := ParseValue(c.in)
		if err != nil {
			t.Errorf("ParseValue(%q): unexpected error: %v", c.in, err)
			continue
		}
		if v.IsRegister() {
			t.Errorf("ParseValue(%q) resolved to a register, want literal", c.in)
			continue
		}
		rf := RegisterFile{}
		if got := rf.Read(v); got != c.want {
			t.Errorf("ParseValue(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestTargetEquality(t *testing.T) {
	regTarget := RegTarget(3)
	if !regTarget.EqualsValue(FromRegister(3)) {
		t.Error("RegTarget(3) should equal FromRegister(3)")
	}
	if regTarget.EqualsValue(FromRegister(4)) {
		t.Error("RegTarget(3) should not equal FromRegister(4)")
	}
	if regTarget.EqualsValue(Literal(3)) {
		t.Error("a register target must never equal a literal value")
	}

	memTarget := MemTarget(0x10)
	if !memTarget.EqualsAddress(0x10) || memTarget.EqualsAddress(0x11) {
		t.Error("MemTarget(0x10) address equality is wrong")
	}
	if memTarget.EqualsValue(Literal(0x10)) {
		t.Error("a memory target must never equal a value operand")
	}
}

func TestParseTarget(t *testing.T) {
	tgt, err := ParseTarget("r2")
	if err != nil || tgt.IsMem() || !tgt.EqualsRegister(2) {
		t.Fatalf("ParseTarget(%q) = %+v, %v, want register 2", "r2", tgt, err)
	}
	tgt, err = ParseTarget("0x100")
	if err != nil || !tgt.IsMem() || !tgt.EqualsAddress(0x100) {
		t.Fatalf("ParseTarget(%q) = %+v, %v, want mem 0x100", "0x100", tgt, err)
	}
}
