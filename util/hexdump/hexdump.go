/*
 * Synacor debugger - Hex + ASCII row formatting.
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

// Package hexdump renders a byte slice as the "x" command's 16-byte-per-row
// hex + ASCII view, nibble by nibble the way the rest of this codebase's
// ancestry formats binary dumps.
package hexdump

import (
	"fmt"
	"strings"
)

const width = 16

var hexDigits = "0123456789abcdef"

func writeByte(sb *strings.Builder, b byte) {
	sb.WriteByte(hexDigits[(b>>4)&0xf])
	sb.WriteByte(hexDigits[b&0xf])
}

// Format renders data as rows of 16 bytes: a 4-hex-digit starting offset,
// the hex byte columns (padded out on a short final row), then the ASCII
// rendering with non-printable bytes shown as '.'.
func Format(startOffset int, data []byte) string {
	var sb strings.Builder
	for rowStart := 0; rowStart < len(data); rowStart += width {
		end := rowStart + width
		if end > len(data) {
			end = len(data)
		}
		row := data[rowStart:end]

		fmt.Fprintf(&sb, "%04x: ", startOffset+rowStart)

		for _, b := range row {
			writeByte(&sb, b)
			sb.WriteByte(' ')
		}
		for i := len(row); i < width; i++ {
			sb.WriteString("   ")
		}

		for _, b := range row {
			if b >= 0x20 && b < 0x7f {
				sb.WriteByte(b)
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
