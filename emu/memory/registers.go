/*
 * Synacor debugger - Register file.
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

// RegisterFile is the VM's fixed set of eight 16-bit registers.
type RegisterFile struct {
	regs [8]uint16
}

// NewRegisterFile returns a zeroed register file.
func NewRegisterFile() *RegisterFile {
	return &RegisterFile{}
}

// LoadRegisterFile builds a register file from already-known contents,
// used when restoring a saved machine.
func LoadRegisterFile(regs [8]uint16) *RegisterFile {
	return &RegisterFile{regs: regs}
}

// Read resolves an operand: a literal returns itself, a register
// reference returns the register's current contents.
func (rf *RegisterFile) Read(v Value) uint16 {
	if v.isReg {
		return rf.regs[v.reg]
	}
	return v.literal
}

// WriteU16 stores a raw word into a register.
func (rf *RegisterFile) WriteU16(r Register, u uint16) {
	rf.regs[r] = u
}

// WriteValue resolves val and stores the result into reg.
func (rf *RegisterFile) WriteValue(r Register, val Value) {
	rf.WriteU16(r, rf.Read(val))
}

// All returns a snapshot of the eight registers in order.
func (rf *RegisterFile) All() [8]uint16 {
	return rf.regs
}
