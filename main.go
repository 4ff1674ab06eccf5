package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"golang.org/x/term"

	"blockfall/terminal"
)

const (
	hideCursor = "\033[2J\033[?25l" // also clear screen
	showCursor = "\033[25;0H\n\r\033[?25h"
)

func main() {
	noGhost := flag.Bool("no-ghost", false, "disable the ghost piece")
	debug := flag.Bool("debug", false, "log debug messages")
	logFile := flag.String("log", "", "append logs to a file, discarded when empty")
	flag.Parse()

	logger, closeLog, err := newLogger(*logFile, *debug)
	if err != nil {
		log.Fatalf("unable to open log file: %v", err)
	}
	defer closeLog()

	restore := startRawConsole()
	defer restore()

	t, err := terminal.New(&terminal.Options{Logger: logger, NoGhost: *noGhost})
	if err != nil {
		restore()
		log.Fatalf("unable to start the terminal: %v", err)
	}
	t.Start()
}

// newLogger logs JSON lines to the given file. Logging to the screen
// would fight with the game frame, so without a file everything is
// discarded.
func newLogger(path string, debug bool) (*slog.Logger, func(), error) {
	var w io.Writer = io.Discard
	closeLog := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeLog = func() { f.Close() }
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})), closeLog, nil
}

func startRawConsole() func() {
	fmt.Print(hideCursor)
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		log.Fatalf("Error setting terminal to raw mode: %v", err)
	}

	return func() {
		if err := term.Restore(int(os.Stdin.Fd()), oldState); err != nil {
			log.Fatalf("unable to restore the terminal original state: %v", err)
		}
		fmt.Print(showCursor)
	}
}
