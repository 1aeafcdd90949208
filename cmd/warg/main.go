// warg benchmarks and inspects scene graphs.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/warg/internal/config"
	"github.com/Faultbox/warg/internal/logger"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command, rest := args[0], args[1:]
	switch command {
	case "bench":
		err = runBench(cfg)
	case "inspect":
		err = runInspect(cfg, rest)
	case "validate":
		err = runValidate(cfg, rest)
	case "init-config":
		err = runInitConfig(cfg, rest)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Fatal(command+" failed", zap.Error(err))
	}
}

func printUsage() {
	fmt.Println(`warg - scene graph traversal and instancing bench

Usage:
  warg [flags] <command> [args]

Commands:
  bench                Build the demo scene and time traverse, batch and draw
  inspect <asset>      Print an asset's hierarchy as imported into a scene graph
  validate <asset>     Check an asset against the import preconditions
  init-config [path]   Write the effective config (default: user config dir)

Flags:
  -config <path>       Config file (default ./config.yaml, then user config dir)
  -debug               Debug logging
  -workers <n>         Traversal workers
  -strategy <name>     single, local_merge, shared_accumulator
  -overflow <name>     reject, split
  -backend <name>      headless, gl
  -frames <n>          Bench frames
  -hidden              Render the gl backend into a hidden window

Examples:
  warg bench
  warg -strategy shared_accumulator -workers 8 bench
  warg inspect chest.yaml`)
}

func runInitConfig(cfg *config.Config, args []string) error {
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Println("wrote", args[0])
		return nil
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Println("wrote", filepath.Join(config.ConfigDir(), "config.yaml"))
	return nil
}
