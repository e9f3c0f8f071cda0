package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

const (
	ModeRide      = "ride-service"
	ModeDriverLoc = "driver-location-service"
	ModeAdmin     = "admin-service"
)

// aliases maps every accepted spelling of a mode to its canonical name.
var aliases = map[string]string{
	ModeRide: ModeRide, "ride": ModeRide, "r": ModeRide,
	ModeDriverLoc: ModeDriverLoc, "driver": ModeDriverLoc, "driver-service": ModeDriverLoc, "dl": ModeDriverLoc,
	ModeAdmin: ModeAdmin, "admin": ModeAdmin, "a": ModeAdmin,
}

// ParseMode picks the service mode out of the raw argument list and returns
// the leftover args for that mode's own FlagSet. Both forms work:
//
//	--mode=ride-service --max-concurrent=150
//	ride-service --max-concurrent=150
func ParseMode(args []string) (string, []string, error) {
	var mode string
	var rest []string

	for _, arg := range args {
		if v, ok := strings.CutPrefix(arg, "--mode="); ok {
			mode = v
			continue
		}
		if mode == "" {
			if canon, ok := aliases[arg]; ok {
				mode = canon
				continue
			}
		}
		rest = append(rest, arg)
	}

	if mode == "" {
		return "", rest, errors.New("no mode specified: use --mode=<service>")
	}
	if canon, ok := aliases[mode]; ok {
		mode = canon
	}
	return mode, rest, nil
}

// PrintUsage prints the usage information with examples.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, "\033[36m") // cyan

	fmt.Fprintln(w, `Usage:
  ./ride-share --mode=<service> [flags]

Services (modes):
  ride-service                 Ride lifecycle API, shared-ride matching, fares
  driver-location-service      Driver availability, locations, available-driver feed
  admin-service                Admin dashboard, moderation and refunds API

Examples:
  ./ride-share --mode=ride-service --max-concurrent=150
  ./ride-share --mode=driver-location-service --prefetch=8 --max-concurrent=200
  ./ride-share --mode=admin-service --max-concurrent=50`)

	fmt.Fprint(w, "\033[0m") // reset
}

// AttachUsage wires a concise per-mode usage to a FlagSet.
func AttachUsage(fs *flag.FlagSet, mode string) {
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: ./ride-share --mode=%s [flags]\n", mode)
		fs.PrintDefaults()
	}
}
