package core

// Addr is the absolute bus address of a 32-bit memory-mapped register
type Addr uint32

// RegisterFile is the hardware access interface that core code uses.
// On the target it is backed by runtime/volatile pointers; on the host it is
// backed by a simulated register window (see package sim).
type RegisterFile interface {
	// Load reads the full 32-bit word at addr
	Load(addr Addr) uint32

	// Store writes the full 32-bit word at addr
	Store(addr Addr, value uint32)
}

// Register is a single 32-bit register bound to a register file.
// Every method is one whole-word access (or one read plus one write), so the
// number and order of bus accesses is exactly what the call sequence says.
type Register struct {
	file RegisterFile
	addr Addr
}

// NewRegister binds addr to file
func NewRegister(file RegisterFile, addr Addr) Register {
	return Register{file: file, addr: addr}
}

// Addr returns the bus address of the register
func (r Register) Addr() Addr {
	return r.addr
}

// Get reads the register
func (r Register) Get() uint32 {
	return r.file.Load(r.addr)
}

// Set overwrites the register
func (r Register) Set(value uint32) {
	r.file.Store(r.addr, value)
}

// SetBits performs reg |= bits
func (r Register) SetBits(bits uint32) {
	r.file.Store(r.addr, r.file.Load(r.addr)|bits)
}

// ClearBits performs reg &^= bits
func (r Register) ClearBits(bits uint32) {
	r.file.Store(r.addr, r.file.Load(r.addr)&^bits)
}

// HasBits reports whether all of bits are set
func (r Register) HasBits(bits uint32) bool {
	return r.file.Load(r.addr)&bits == bits
}

// Field reads the field of the given width at pos
func (r Register) Field(pos, width uint8) uint32 {
	return (r.file.Load(r.addr) >> pos) & fieldMask(width)
}

// ReplaceBits clears the field (mask << pos) and writes value into it
func (r Register) ReplaceBits(value, mask uint32, pos uint8) {
	v := r.file.Load(r.addr)
	v &^= mask << pos
	v |= (value & mask) << pos
	r.file.Store(r.addr, v)
}

func fieldMask(width uint8) uint32 {
	if width >= 32 {
		return 0xFFFFFFFF
	}
	return (1 << width) - 1
}
