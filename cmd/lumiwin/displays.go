package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/lumiwin/backend/x11"
)

func runDisplays(args []string) int {
	fs := flag.NewFlagSet("displays", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print JSON")
	display := fs.String("display", "", "X display (default: $DISPLAY)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	monitors, err := x11.Displays(*display)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(monitors); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	printMonitors(os.Stdout, monitors)
	return 0
}

func printMonitors(w io.Writer, monitors []x11.Monitor) {
	for _, m := range monitors {
		primary := ""
		if m.Primary {
			primary = " (primary)"
		}
		fmt.Fprintf(w, "%d: %s %dx%d+%d+%d%s\n", m.ID, m.Name, m.Width, m.Height, m.X, m.Y, primary)
	}
}
