// Copyright 2026 The jdipipeline Authors
// SPDX-License-Identifier: Apache-2.0

// jdi-inspect is a small demo CLI that wires a mock debugger connection
// to a profile and prints matching events to the console as they are
// dispatched. It exists to exercise the library against something
// runnable, in lieu of a real JVM.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/jdi-foundation/jdipipeline/lib/eventmgr"
	"github.com/jdi-foundation/jdipipeline/lib/jdi"
	"github.com/jdi-foundation/jdipipeline/lib/jdiarg"
	"github.com/jdi-foundation/jdipipeline/lib/jdiconfig"
	"github.com/jdi-foundation/jdipipeline/lib/pipeline"
	"github.com/jdi-foundation/jdipipeline/lib/profile"
	"github.com/jdi-foundation/jdipipeline/lib/reqmgr"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var className string
	var methodName string
	var listKinds bool

	flagSet := pflag.NewFlagSet("jdi-inspect", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to jdipipeline.yaml (overrides JDIPIPELINE_CONFIG)")
	flagSet.StringVar(&className, "class", "demo.Main", "class to watch method-entry events on")
	flagSet.StringVar(&methodName, "method", "run", "method to watch method-entry events on")
	flagSet.BoolVar(&listKinds, "list-kinds", false, "print every event kind this module knows about and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}

	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	if listKinds {
		for _, kind := range jdi.Kinds() {
			fmt.Println(kind)
		}
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))

	conn := jdi.NewMockConnection("main",
		[]jdi.ClassInfo{{Name: className, Status: "prepared"}},
	)
	session := profile.NewSession(logger, conn)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if !cfg.IsDisabled(jdi.MethodEntry) {
		stream, err := session.MethodEntry.OnWithData(
			reqmgr.MethodKey{ClassName: className, MethodName: methodName},
			jdiarg.Data{Key: "iteration"},
		)
		if err != nil {
			return fmt.Errorf("subscribe method-entry: %w", err)
		}
		defer stream.Close()
		pipeline.Noop(stream, printEventData)
	}

	// Feed the canned tape and signal the mock VM's shutdown before
	// running the dispatcher: Run blocks until ctx is cancelled or the
	// connection goes terminal, so for a one-shot demo the events must
	// already be queued and Terminate already called.
	conn.Feed(
		jdi.TapeEvent{Kind: jdi.MethodEntry, ClassName: className, MethodName: methodName, Thread: "main", Payload: map[string]any{"iteration": 1}},
		jdi.TapeEvent{Kind: jdi.MethodEntry, ClassName: className, MethodName: methodName, Thread: "main", Payload: map[string]any{"iteration": 2}},
	)
	conn.Terminate()

	session.Run(ctx)
	return nil
}

func loadConfig(path string) (*jdiconfig.Config, error) {
	if path != "" {
		return jdiconfig.LoadFile(path)
	}
	if os.Getenv("JDIPIPELINE_CONFIG") != "" {
		return jdiconfig.Load()
	}
	return jdiconfig.Default(), nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var kindColor = color.New(color.FgCyan, color.Bold)

func printEventData(data eventmgr.EventData) {
	location := "-"
	if data.Event.Location != nil {
		location = data.Event.Location.String()
	}
	fmt.Printf("%s %s thread=%s aux=%v\n", kindColor.Sprint(data.Event.Kind), location, data.Event.Thread, data.Aux)
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `jdi-inspect — demo console for the jdipipeline request/event pipeline.

Wires a deterministic mock debugger connection to a method-entry
profile and prints matching events as they are dispatched. No real JVM
is involved; --class/--method seed a small canned tape.

Usage:
  jdi-inspect [flags]

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
