package hart

import (
	"errors"
	"fmt"
)

// DefaultMemorySize is used when a Hart is constructed without an explicit
// size: an image plus a working stack comfortably fits in a megabyte for
// the hand-written programs and RV32UI compliance tests this emulator
// targets.
const DefaultMemorySize = 1 << 20 // 1 MiB

// Memory is a flat, byte-addressed array of RAM. It has no notion of
// alignment: an unaligned 16 or 32-bit load/store is simply the bytewise
// composition or decomposition of the bytes at the given address. It is
// single-threaded and holds no locks, matching the Hart's exclusive
// ownership of it for the run's lifetime.
type Memory struct {
	bytes []byte
}

// NewMemory allocates a zeroed Memory of the given size in bytes.
func NewMemory(size uint32) *Memory {
	return &Memory{bytes: make([]byte, size)}
}

// Size reports the total addressable byte count.
func (m *Memory) Size() uint32 {
	return uint32(len(m.bytes))
}

func (m *Memory) checkRange(addr, width uint32) error {
	if width > m.Size() || addr > m.Size()-width {
		return fmt.Errorf("%w: addr=0x%x width=%d size=0x%x", ErrOutOfRange, addr, width, m.Size())
	}
	return nil
}

// Load8 returns the byte at addr.
func (m *Memory) Load8(addr uint32) (uint8, error) {
	if err := m.checkRange(addr, 1); err != nil {
		return 0, err
	}
	return m.bytes[addr], nil
}

// Load16 returns the little-endian halfword at addr.
func (m *Memory) Load16(addr uint32) (uint16, error) {
	if err := m.checkRange(addr, 2); err != nil {
		return 0, err
	}
	return uint16(m.bytes[addr]) | uint16(m.bytes[addr+1])<<8, nil
}

// Load32 returns the little-endian word at addr.
func (m *Memory) Load32(addr uint32) (uint32, error) {
	if err := m.checkRange(addr, 4); err != nil {
		return 0, err
	}
	return uint32(m.bytes[addr]) |
		uint32(m.bytes[addr+1])<<8 |
		uint32(m.bytes[addr+2])<<16 |
		uint32(m.bytes[addr+3])<<24, nil
}

// Store8 writes the low 8 bits of value at addr.
func (m *Memory) Store8(addr uint32, value uint8) error {
	if err := m.checkRange(addr, 1); err != nil {
		return err
	}
	m.bytes[addr] = value
	return nil
}

// Store16 writes the low 16 bits of value, little-endian, at addr.
func (m *Memory) Store16(addr uint32, value uint16) error {
	if err := m.checkRange(addr, 2); err != nil {
		return err
	}
	m.bytes[addr] = byte(value)
	m.bytes[addr+1] = byte(value >> 8)
	return nil
}

// Store32 writes value, little-endian, at addr.
func (m *Memory) Store32(addr uint32, value uint32) error {
	if err := m.checkRange(addr, 4); err != nil {
		return err
	}
	m.bytes[addr] = byte(value)
	m.bytes[addr+1] = byte(value >> 8)
	m.bytes[addr+2] = byte(value >> 16)
	m.bytes[addr+3] = byte(value >> 24)
	return nil
}

// LoadImage copies image into memory starting at address 0. It fails if the
// image does not fit.
func (m *Memory) LoadImage(image []byte) error {
	if uint32(len(image)) > m.Size() {
		return fmt.Errorf("%w: image is %d bytes, memory is %d bytes", ErrOutOfRange, len(image), m.Size())
	}
	copy(m.bytes, image)
	return nil
}

// ErrOutOfRange is wrapped by every Memory access that falls outside
// [0, Size()). Callers that need to distinguish a fetch-time failure from
// a load/store-time failure (see FetchOutOfRange vs MemoryOutOfRange in
// trap.go) do so at the call site, since Memory itself has
// no notion of "this access is a fetch".
var ErrOutOfRange = errors.New("memory access out of range")
