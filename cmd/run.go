// Package cmd wires the Hart core to a command line: reading a flat binary
// image, driving the run loop, and reporting the exit code, following the
// split the teacher's own rvgo/cmd package draws between "the VM" and "the
// thing that runs the VM from argv". None of this package's logic is part
// of the RV32I core; it is the external collaborator the specification
// calls out as out of scope for correctness, but in scope for testability.
package cmd

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/profile"
	"github.com/urfave/cli/v2"

	"github.com/rv32hart/ruscv/hart"
)

var (
	DebugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "emit a per-step dump of pc, instruction, and registers to stderr",
	}
	MemSizeFlag = &cli.Uint64Flag{
		Name:  "mem-size",
		Usage: "memory size in bytes made available to the hart",
		Value: uint64(hart.DefaultMemorySize),
	}
	MaxStepsFlag = &cli.Uint64Flag{
		Name:  "max-steps",
		Usage: "stop after this many steps even if the program has not halted (0 = unbounded)",
		Value: 0,
	}
	CPUProfileFlag = &cli.BoolFlag{
		Name:  "cpuprofile",
		Usage: "write a CPU profile of the run to ./cpu.pprof",
	}
)

// RunCommand is the sole CLI command: `ruscv <path> [-debug]`.
var RunCommand = &cli.Command{
	Name:      "run",
	Usage:     "run a flat RV32I binary image to completion",
	ArgsUsage: "<path>",
	Action:    Run,
	Flags: []cli.Flag{
		DebugFlag,
		MemSizeFlag,
		MaxStepsFlag,
		CPUProfileFlag,
	},
}

// Run loads the image at the command's first positional argument and
// drives it to completion, matching the specification's CLI surface: a
// single line to stderr reporting the exit code on normal exit, process
// status 0 iff that exit code is also 0.
func Run(ctx *cli.Context) error {
	if ctx.Bool(CPUProfileFlag.Name) {
		defer profile.Start(profile.NoShutdownHook, profile.ProfilePath("."), profile.CPUProfile).Stop()
	}

	path := ctx.Args().First()
	if path == "" {
		return fmt.Errorf("missing required <path> argument")
	}
	image, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image %q: %w", path, err)
	}

	lvl := log.LevelInfo
	if ctx.Bool(DebugFlag.Name) {
		lvl = log.LevelDebug
	}
	l := Logger(os.Stderr, lvl)

	h, err := hart.New(image, hart.Config{
		MemorySize: uint32(ctx.Uint64(MemSizeFlag.Name)),
		Debug:      ctx.Bool(DebugFlag.Name),
		Log:        l,
	})
	if err != nil {
		return fmt.Errorf("failed to construct hart: %w", err)
	}

	result, err := h.Run(ctx.Context, ctx.Uint64(MaxStepsFlag.Name))
	if err != nil {
		return fmt.Errorf("run aborted: %w", err)
	}

	switch result.Reason {
	case hart.ExitedNormally:
		fmt.Fprintf(os.Stderr, "Emulated program finished at exit syscall with exit-code: %d\n", result.ExitCode)
		if result.ExitCode != 0 {
			os.Exit(1)
		}
		return nil
	case hart.Terminated:
		fmt.Fprintf(os.Stderr, "Emulated program ran off the end of its image at pc 0x%08x\n", result.PC)
		os.Exit(1)
		return nil
	case hart.Trapped:
		fmt.Fprintf(os.Stderr, "Emulated program trapped: %v\n", result.Trap)
		os.Exit(1)
		return nil
	default:
		return fmt.Errorf("run stopped early (%s) at pc 0x%08x", result.Reason, result.PC)
	}
}
