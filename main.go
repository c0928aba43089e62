package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"

	"blockfall/highscore"
	"blockfall/terminal"
)

const (
	hideCursor = "\033[2J\033[?25l" // also clear screen
	showCursor = "\033[24;0H\n\r\033[?25h"
)

func main() {
	noGhost := flag.Bool("no-ghost", false, "disable the landing preview")
	logFile := flag.String("log", "", "write debug logs to this file")
	dbPath := flag.String("db", defaultDBPath(), "high score database location")
	flag.Parse()

	logger, closeLog := newLogger(*logFile)
	defer closeLog()

	store, err := highscore.Open(*dbPath)
	if err != nil {
		log.Fatalf("unable to open the high score store: %v", err)
	}
	defer store.Close()

	restore := startRawConsole()
	defer restore()
	defer keyboard.Close()

	terminal.New(&terminal.Options{
		Logger:  logger,
		NoGhost: *noGhost,
		Store:   store,
	}).Start()
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "blockfall.db"
	}
	return home + "/.blockfall/scores.db"
}

// newLogger discards logs unless a file is requested. Stdout belongs to
// the game board while the console is raw.
func newLogger(path string) (*slog.Logger, func()) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("unable to open log file: %v", err)
	}
	return slog.New(slog.NewTextHandler(f, nil)), func() { f.Close() }
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
