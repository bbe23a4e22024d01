package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/rv32hart/ruscv/cmd"
)

func main() {
	app := cli.NewApp()
	app.Name = "ruscv"
	app.Usage = "RV32I emulator"
	app.Description = "Runs a flat RV32I binary image to completion."
	app.Action = cmd.Run
	app.Flags = cmd.RunCommand.Flags

	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
	}()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
