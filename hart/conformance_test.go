package hart

import (
	"debug/elf"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"
)

// maxConformanceMemory caps the flat window loadConformanceELF is willing to
// allocate. riscv-tests binaries link at 0x80000000; since this harness maps
// PT_LOAD segments at their literal virtual address rather than relocating
// them, a binary linked far from address 0 would otherwise need a window
// sized to its link address, not its actual footprint -- for 0x80000000 that
// is ~2 GiB per test case. This cap turns that into a clear failure instead
// of a silent near-OOM allocation.
const maxConformanceMemory = 64 << 20 // 64 MiB

// TestConformanceRV32UI runs every rv32ui-p-* compliance binary found in the
// directory named by RISCV_TESTSUITE, following the same elf.Open-and-step
// pattern the teacher's own fast.TestStep used for rv64ui. It is skipped
// entirely when the environment variable is unset, since the compiled
// binaries are not checked into this repository; the hand-encoded scenarios
// in hart_test.go are what run by default.
func TestConformanceRV32UI(t *testing.T) {
	dir := os.Getenv("RISCV_TESTSUITE")
	if dir == "" {
		t.Skip("RISCV_TESTSUITE not set; skipping rv32ui-p-* conformance run")
	}

	matches, err := filepath.Glob(filepath.Join(dir, "rv32ui-p-*"))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no rv32ui-p-* binaries found in %s", dir)

	for _, path := range matches {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			runConformanceBinary(t, path)
		})
	}
}

func runConformanceBinary(t *testing.T, path string) {
	f, err := elf.Open(path)
	require.NoError(t, err)
	defer f.Close()

	h, pc, err := loadConformanceELF(f)
	require.NoError(t, err)
	h.pc = pc

	for i := 0; i < 1_000_000; i++ {
		result, halted, err := h.Step()
		require.NoError(t, err)
		if halted {
			require.Equal(t, ExitedNormally, result.Reason, "unexpected trap: %v", result.Trap)
			if result.ExitCode != 0 {
				t.Fatalf("failed at riscv-tests case %d", result.ExitCode>>1)
			}
			return
		}
	}
	t.Fatal("ran out of steps without reaching the exit ecall")
}

// loadConformanceELF maps every PT_LOAD segment of f into a flat Memory at
// its virtual address, the harness-side equivalent of the teacher's own
// LoadELF against that package's paged memory. riscv-tests binaries link at
// 0x80000000; this emulator has no virtual memory (see SPEC_FULL.md's
// Non-goals), so the test harness, not the core, allocates a flat window
// sized to the binary's actual address range rather than pretending to
// support the full 32-bit space.
func loadConformanceELF(f *elf.File) (*Hart, uint32, error) {
	var highest uint64
	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		if end := prog.Vaddr + prog.Memsz; end > highest {
			highest = end
		}
	}
	if highest > maxConformanceMemory {
		return nil, 0, fmt.Errorf(
			"binary's highest PT_LOAD address 0x%x exceeds this harness's %d-byte flat-window cap; "+
				"it links too far from address 0 for the non-relocating conformance loader to map",
			highest, maxConformanceMemory)
	}

	mem := NewMemory(uint32(highest))
	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		data := make([]byte, prog.Filesz)
		if _, err := prog.ReadAt(data, 0); err != nil {
			return nil, 0, err
		}
		copy(mem.bytes[prog.Vaddr:], data)
	}

	h := &Hart{mem: mem, log: log.NewLogger(log.LogfmtHandlerWithLevel(io.Discard, log.LevelCrit))}
	return h, uint32(f.Entry), nil
}
