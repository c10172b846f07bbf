// Package sim provides a simulated STM32F0 register window for running the
// firmware core on a host: bounds-checked register memory, a peripheral model
// that answers ready flags, a write log and a cycle counter.
package sim

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"

	mmap "github.com/edsrzf/mmap-go"

	"blinkled/core"
)

// ErrUnmapped is wrapped by FaultError for accesses outside every region
var ErrUnmapped = errors.New("unmapped register address")

// ErrReadOnly is wrapped by FaultError for stores to a read-only window
var ErrReadOnly = errors.New("read-only register window")

// FaultError is the panic value raised on a bad register access, the
// simulated equivalent of a bus fault
type FaultError struct {
	Op   string
	Addr core.Addr
	Err  error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("%s 0x%08X: %v", e.Op, uint32(e.Addr), e.Err)
}

func (e *FaultError) Unwrap() error {
	return e.Err
}

// Region is a contiguous block of peripheral registers
type Region struct {
	Name string
	Base core.Addr
	Size uint32
}

// DefaultRegions covers the peripherals the firmware touches
var DefaultRegions = []Region{
	{Name: "RCC", Base: core.RCCBase, Size: 0x400},
	{Name: "GPIOC", Base: core.GPIOCBase, Size: 0x400},
}

// Model reacts to register traffic the way the peripheral hardware would
type Model interface {
	// Reset writes the power-on register values
	Reset(m *Memory)

	// BeforeLoad runs before every load, so pending hardware events can
	// complete while firmware polls
	BeforeLoad(m *Memory, addr core.Addr)

	// AfterStore runs after every firmware store
	AfterStore(m *Memory, addr core.Addr, old, new uint32)
}

// Access is one logged firmware store
type Access struct {
	Seq   uint64    // Global access sequence number (loads and stores)
	Cycle uint64    // Cycle counter at the time of the store
	Addr  core.Addr // Register address
	Old   uint32    // Value before the store
	New   uint32    // Value after the store and the model reaction
}

type mappedRegion struct {
	Region
	buf []byte
}

// Memory is a simulated register file implementing core.RegisterFile.
// It is not safe for concurrent use except for Halt.
type Memory struct {
	regions  []mappedRegion
	model    Model
	readOnly bool

	mapping mmap.MMap
	file    *os.File

	log    []Access
	seq    uint64
	cycles uint64
	loads  map[core.Addr]uint64

	accessBudget uint64
	halted       atomic.Bool
}

// New creates heap-backed register memory for regions, reset by model.
// A nil model gives plain memory with no hardware reactions.
func New(regions []Region, model Model) *Memory {
	m := &Memory{model: model, loads: make(map[core.Addr]uint64)}
	m.mapRegions(regions, make([]byte, regionsSize(regions)))
	if model != nil {
		model.Reset(m)
	}
	return m
}

// OpenShared creates register memory backed by a memory-mapped file, so
// another process can observe the registers while the firmware runs
func OpenShared(path string, regions []Region, model Model) (*Memory, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("couldn't open shared window %s: %w", path, err)
	}
	if err := f.Truncate(int64(regionsSize(regions))); err != nil {
		f.Close()
		return nil, fmt.Errorf("couldn't size shared window: %w", err)
	}
	mm, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("couldn't map shared window: %w", err)
	}

	m := &Memory{model: model, loads: make(map[core.Addr]uint64), mapping: mm, file: f}
	m.mapRegions(regions, mm)
	if model != nil {
		model.Reset(m)
	}
	return m, nil
}

// OpenSharedReadOnly maps a window created by OpenShared for observation
func OpenSharedReadOnly(path string, regions []Region) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open shared window %s: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if st.Size() < int64(regionsSize(regions)) {
		f.Close()
		return nil, fmt.Errorf("shared window %s is %d bytes, want %d", path, st.Size(), regionsSize(regions))
	}
	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("couldn't map shared window: %w", err)
	}

	m := &Memory{readOnly: true, loads: make(map[core.Addr]uint64), mapping: mm, file: f}
	m.mapRegions(regions, mm)
	return m, nil
}

// Close unmaps a shared window. It is a no-op for heap memory.
func (m *Memory) Close() error {
	if m.mapping == nil {
		return nil
	}
	err := m.mapping.Unmap()
	m.mapping = nil
	if cerr := m.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Flush writes a shared window back to its file
func (m *Memory) Flush() error {
	if m.mapping == nil || m.readOnly {
		return nil
	}
	return m.mapping.Flush()
}

func regionsSize(regions []Region) int {
	n := 0
	for _, r := range regions {
		n += int(r.Size)
	}
	return n
}

func (m *Memory) mapRegions(regions []Region, backing []byte) {
	off := 0
	for _, r := range regions {
		m.regions = append(m.regions, mappedRegion{Region: r, buf: backing[off : off+int(r.Size)]})
		off += int(r.Size)
	}
}

// word returns the 4-byte slot for addr, or nil if addr is unmapped or
// not word aligned
func (m *Memory) word(addr core.Addr) []byte {
	if addr&3 != 0 {
		return nil
	}
	for _, r := range m.regions {
		if addr >= r.Base && uint32(addr-r.Base) < r.Size {
			off := uint32(addr - r.Base)
			return r.buf[off : off+4]
		}
	}
	return nil
}

func (m *Memory) checkHalt() {
	if m.halted.Load() {
		runtime.Goexit()
	}
	if m.accessBudget != 0 && m.seq >= m.accessBudget {
		m.halted.Store(true)
		runtime.Goexit()
	}
}

// Load implements core.RegisterFile
func (m *Memory) Load(addr core.Addr) uint32 {
	m.checkHalt()
	w := m.word(addr)
	if w == nil {
		panic(&FaultError{Op: "load", Addr: addr, Err: ErrUnmapped})
	}
	m.seq++
	m.loads[addr]++
	if m.model != nil {
		m.model.BeforeLoad(m, addr)
	}
	return binary.LittleEndian.Uint32(w)
}

// Store implements core.RegisterFile
func (m *Memory) Store(addr core.Addr, value uint32) {
	m.checkHalt()
	w := m.word(addr)
	if w == nil {
		panic(&FaultError{Op: "store", Addr: addr, Err: ErrUnmapped})
	}
	if m.readOnly {
		panic(&FaultError{Op: "store", Addr: addr, Err: ErrReadOnly})
	}
	m.seq++
	old := binary.LittleEndian.Uint32(w)
	binary.LittleEndian.PutUint32(w, value)
	if m.model != nil {
		m.model.AfterStore(m, addr, old, value)
	}
	m.log = append(m.log, Access{
		Seq:   m.seq,
		Cycle: m.cycles,
		Addr:  addr,
		Old:   old,
		New:   binary.LittleEndian.Uint32(w),
	})
}

// Peek reads a register without logging, counting or model reactions
func (m *Memory) Peek(addr core.Addr) uint32 {
	w := m.word(addr)
	if w == nil {
		panic(&FaultError{Op: "peek", Addr: addr, Err: ErrUnmapped})
	}
	return binary.LittleEndian.Uint32(w)
}

// Poke writes a register on behalf of the hardware: no log entry, no model call
func (m *Memory) Poke(addr core.Addr, value uint32) {
	w := m.word(addr)
	if w == nil {
		panic(&FaultError{Op: "poke", Addr: addr, Err: ErrUnmapped})
	}
	binary.LittleEndian.PutUint32(w, value)
}

// Tick advances the cycle counter by one; install it as the delay no-op
func (m *Memory) Tick() {
	m.cycles++
}

// Cycles returns the cycle counter
func (m *Memory) Cycles() uint64 {
	return m.cycles
}

// Loads returns how many times addr was loaded
func (m *Memory) Loads(addr core.Addr) uint64 {
	return m.loads[addr]
}

// Accesses returns the total number of loads and stores
func (m *Memory) Accesses() uint64 {
	return m.seq
}

// Log returns a copy of the store log
func (m *Memory) Log() []Access {
	out := make([]Access, len(m.log))
	copy(out, m.log)
	return out
}

// Stores returns the logged stores to addr
func (m *Memory) Stores(addr core.Addr) []Access {
	var out []Access
	for _, a := range m.log {
		if a.Addr == addr {
			out = append(out, a)
		}
	}
	return out
}

// ResetLog drops the store log, keeping register contents
func (m *Memory) ResetLog() {
	m.log = m.log[:0]
}

// SetAccessBudget halts the firmware goroutine once n accesses have been made.
// Only use it when firmware runs on its own goroutine; 0 disables the budget.
func (m *Memory) SetAccessBudget(n uint64) {
	m.accessBudget = n
}

// Halt makes the next access of the firmware goroutine terminate it with
// runtime.Goexit. It is safe to call from another goroutine.
func (m *Memory) Halt() {
	m.halted.Store(true)
}

// Halted reports whether the memory stopped its firmware goroutine
func (m *Memory) Halted() bool {
	return m.halted.Load()
}

// Regions returns the mapped regions
func (m *Memory) Regions() []Region {
	out := make([]Region, len(m.regions))
	for i, r := range m.regions {
		out[i] = r.Region
	}
	return out
}
