package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	adminservice "ride-share/cmd/admin_service"
	driverlocationservice "ride-share/cmd/driver_location_service"
	rideservice "ride-share/cmd/ride_service"
	"ride-share/internal/cli"
)

func main() {
	if len(os.Args) == 2 && (os.Args[1] == "--help" || os.Args[1] == "-h") {
		cli.PrintUsage(os.Stdout)
		os.Exit(0)
	}

	mode, svcArgs, err := cli.ParseMode(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cli.PrintUsage(os.Stderr)
		os.Exit(2)
	}

	// cancelled on SIGINT/SIGTERM so every service shuts down the same way
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := runMode(ctx, mode, svcArgs); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	// let deferred logs flush on very fast exits
	select {
	case <-ctx.Done():
	case <-time.After(10 * time.Millisecond):
	}
}

func runMode(ctx context.Context, mode string, args []string) error {
	fs := flag.NewFlagSet(mode, flag.ContinueOnError)
	cli.AttachUsage(fs, mode)

	var prefetch *int
	maxConcDefault := 100
	switch mode {
	case cli.ModeDriverLoc:
		prefetch = fs.Int("prefetch", 8, "RabbitMQ prefetch count for consumer channels")
		maxConcDefault = 200
	case cli.ModeAdmin:
		maxConcDefault = 50
	}
	maxConc := fs.Int("max-concurrent", maxConcDefault, "Maximum number of concurrent requests to process")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if *maxConc < 1 {
		fs.Usage()
		return fmt.Errorf("--max-concurrent must be >= 1")
	}
	if prefetch != nil && *prefetch <= 0 {
		fs.Usage()
		return fmt.Errorf("--prefetch must be > 0")
	}

	switch mode {
	case cli.ModeRide:
		return rideservice.Run(ctx, *maxConc)
	case cli.ModeDriverLoc:
		return driverlocationservice.Run(ctx, *prefetch, *maxConc)
	case cli.ModeAdmin:
		return adminservice.Run(ctx, *maxConc)
	}
	// ParseMode only returns known modes
	return fmt.Errorf("unknown mode %q", mode)
}
