package hexdump

import (
	"strings"
	"testing"
)

func TestFormatSingleShortRow(t *testing.T) {
	out := Format(0, []byte("AB"))
	want := "0000: 41 42                                           AB\n"
	if out != want {
		t.Errorf("Format(0, \"AB\") = %q, want %q", out, want)
	}
}

func TestFormatNonPrintableAsDot(t *testing.T) {
	out := Format(0, []byte{0x00, 0x1f, 0x7f, 'z'})
	if !strings.HasSuffix(strings.TrimRight(out, "\n"), "..z") {
		t.Errorf("Format non-printable bytes = %q, want ASCII column ending \"..z\" (0x00, 0x1f, 0x7f non-printable)", out)
	}
}

func TestFormatOffsetAdvancesPerRow(t *testing.T) {
	data := make([]byte, 20)
	out := Format(0x100, data)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d rows for 20 bytes, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "0100:") {
		t.Errorf("first row = %q, want prefix \"0100:\"", lines[0])
	}
	if !strings.HasPrefix(lines[1], "0110:") {
		t.Errorf("second row = %q, want prefix \"0110:\" (0x100 + 16)", lines[1])
	}
}

func TestFormatEmpty(t *testing.T) {
	if out := Format(0, nil); out != "" {
		t.Errorf("Format(0, nil) = %q, want empty string", out)
	}
}
