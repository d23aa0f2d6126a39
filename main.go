package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tlisp/lisp"
)

const historyFile = ".tlisp_history"

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "USAGE: %s [options] [file]\n", filepath.Base(os.Args[0]))
	flag.PrintDefaults()
}

func main() {
	os.Exit(run())
}

func run() int {
	help := flag.Bool("h", false, "print this help message")
	interactive := flag.Bool("i", false, "run interactive REPL")
	configPath := flag.String("config", os.Getenv("TLISP_CONFIG"), "YAML configuration file")
	verbose := flag.Bool("v", false, "log debug records to stderr")
	flag.Usage = usage
	flag.Parse()

	if *help {
		flag.CommandLine.SetOutput(os.Stdout)
		usage()
		return 0
	}
	if !*interactive && flag.NArg() != 1 {
		usage()
		return 2
	}

	cfg := lisp.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = lisp.LoadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			return 2
		}
	}
	level, _ := cfg.Level()
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	interp := lisp.NewInterpreter(cfg, lisp.WithLogger(logger))
	defer interp.CloseFiles()

	if *interactive {
		var history string
		if home, err := os.UserHomeDir(); err == nil {
			history = filepath.Join(home, historyFile)
		}
		if err := interp.Repl(history); err != nil {
			return 1
		}
		return 0
	}

	if err := interp.LoadFile(flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
