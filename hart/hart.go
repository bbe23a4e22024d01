// Package hart implements the RV32I CPU core: decode, execute, the
// register file and program counter, and the top-level step/run driver.
// It has no notion of files, ELF headers, or the command line; its only
// contract is a byte image loaded into a Memory and a Step/Run loop over
// it, following the teacher's own split between the VM core and its
// command-line shell.
package hart

import (
	"context"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/log"

	"github.com/rv32hart/ruscv/riscv"
)

// TerminationReason identifies why a Run (or the final Step of one) halted.
type TerminationReason uint8

const (
	Running TerminationReason = iota
	ExitedNormally
	Trapped
	Terminated
)

func (r TerminationReason) String() string {
	switch r {
	case Running:
		return "running"
	case ExitedNormally:
		return "exited normally"
	case Trapped:
		return "trapped"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Result is the terminal state record a completed Run (or a Step that
// halted the hart) produces.
type Result struct {
	Reason     TerminationReason
	ExitCode   int32
	Trap       *TrapError // set iff Reason == Trapped
	Registers  [32]uint32
	PC         uint32
}

// Config configures a new Hart. The zero value is valid: it selects
// DefaultMemorySize, disables debug dumps, and discards log output.
type Config struct {
	// MemorySize overrides the default memory size. Zero selects
	// DefaultMemorySize.
	MemorySize uint32
	// Debug enables the per-step dump stream described in the
	// specification's §4.3 top-level driver.
	Debug bool
	// Log receives debug dumps when Debug is true. A nil Log discards
	// them (a logfmt logger over io.Discard), matching the
	// injected-sink design note: tests supply their own logger to
	// capture the stream instead of asserting against stderr.
	Log log.Logger
}

// Hart is the RV32I state machine: 32 registers, a program counter, and
// exclusive ownership of a Memory for the run's lifetime.
type Hart struct {
	regs [32]uint32
	pc   uint32
	mem  *Memory

	debug bool
	log   log.Logger

	exited   bool
	exitCode int32
}

// New constructs a Hart with image loaded into Memory at address 0 and PC
// set to 0.
func New(image []byte, cfg Config) (*Hart, error) {
	size := cfg.MemorySize
	if size == 0 {
		size = DefaultMemorySize
	}
	mem := NewMemory(size)
	if err := mem.LoadImage(image); err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	l := cfg.Log
	if l == nil {
		l = log.NewLogger(log.LogfmtHandlerWithLevel(io.Discard, log.LevelCrit))
	}
	return &Hart{mem: mem, debug: cfg.Debug, log: l}, nil
}

// PC returns the current program counter.
func (h *Hart) PC() uint32 { return h.pc }

// Register returns the current value of register index, which must be in
// [0, 32). Register 0 always reads as 0.
func (h *Hart) Register(index uint32) uint32 {
	if index == 0 {
		return 0
	}
	return h.regs[index]
}

// Memory exposes the hart's backing memory, primarily so a loader or test
// can inspect or seed it beyond the initial image.
func (h *Hart) Memory() *Memory { return h.mem }

// writeRegister centralizes the x0-is-always-zero rule: every instruction
// that targets rd funnels its write-back through here so no execute arm
// needs its own special case.
func (h *Hart) writeRegister(index uint32, value uint32) {
	if index == riscvRegZero {
		return
	}
	h.regs[index] = value
}

const riscvRegZero = 0

// snapshot captures the hart's current registers and PC into a Result with
// the given reason, used both on normal halt and on trap.
func (h *Hart) snapshot(reason TerminationReason, exitCode int32, trapErr *TrapError) Result {
	return Result{
		Reason:    reason,
		ExitCode:  exitCode,
		Trap:      trapErr,
		Registers: h.regs,
		PC:        h.pc,
	}
}

// Step executes exactly one instruction. It returns the hart's terminal
// Result the moment the hart halts (normal exit, zero-instruction
// termination, or trap). Traps are reported in that Result (Reason ==
// Trapped, Trap set), not through err, which is always nil. On a
// non-halting step, halted is false and the returned Result is the zero
// value. In debug mode the step is dumped after it executes, so the dump
// shows the pre-execution PC and the post-execution registers.
func (h *Hart) Step() (result Result, halted bool, err error) {
	if h.exited {
		return h.snapshot(ExitedNormally, h.exitCode, nil), true, nil
	}

	pc := h.pc
	inst, err := h.mem.Load32(pc)
	if err != nil {
		t := trapf(FetchOutOfRange, pc, "fetch at pc 0x%08x: %v", pc, err)
		return h.snapshot(Trapped, 0, t), true, nil
	}

	if inst == 0 {
		return h.snapshot(Terminated, 0, nil), true, nil
	}

	decoded, decErr := Decode(inst)
	if decErr != nil {
		t := trapf(IllegalInstruction, pc, "%v", decErr)
		return h.snapshot(Trapped, 0, t), true, nil
	}

	halt, exitCode, trapErr := h.execute(pc, decoded)
	if h.debug {
		h.dumpStep(pc, inst, decoded)
	}
	if trapErr != nil {
		return h.snapshot(Trapped, 0, trapErr), true, nil
	}
	if halt {
		h.exited = true
		h.exitCode = exitCode
		return h.snapshot(ExitedNormally, exitCode, nil), true, nil
	}
	return Result{}, false, nil
}

// HexU32 lazily formats a uint32 as 8 hex digits when passed as a
// structured log attribute, avoiding the Sprintf cost on log lines that end
// up filtered out, matching the teacher's own cmd.HexU32 helper.
type HexU32 uint32

func (v HexU32) String() string {
	return fmt.Sprintf("%08x", uint32(v))
}

func (h *Hart) dumpStep(pc, inst uint32, decoded Instruction) {
	h.log.Debug("step",
		"pc", HexU32(pc),
		"inst", HexU32(inst),
		"mnemonic", decoded.Mnemonic.String(),
		"regs", h.formatRegisters(),
	)
}

func (h *Hart) formatRegisters() string {
	out := make([]byte, 0, 32*16)
	for i, v := range h.regs {
		out = append(out, []byte(fmt.Sprintf("%s=0x%08x ", riscv.RegisterNames[i], v))...)
	}
	return string(out)
}

// Run repeatedly calls Step until the hart halts, an external step budget
// is exhausted, or ctx is canceled. maxSteps == 0 means unbounded, matching
// the specification's statement that imposing a timeout is the caller's
// responsibility rather than a feature of the core itself. Run introduces
// no execution semantics beyond what Step already defines; it exists
// purely as the convenience loop the teacher's own cmd.Run builds on top of
// its Step function.
func (h *Hart) Run(ctx context.Context, maxSteps uint64) (Result, error) {
	for steps := uint64(0); maxSteps == 0 || steps < maxSteps; steps++ {
		if steps%256 == 0 {
			if err := ctx.Err(); err != nil {
				return h.snapshot(Running, 0, nil), err
			}
		}
		result, halted, err := h.Step()
		if err != nil {
			return Result{}, err
		}
		if halted {
			return result, nil
		}
	}
	return h.snapshot(Running, 0, nil), nil
}
