// Command trackarrd runs the download tracker without the CLI.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
)

var version = "dev"

// options are the daemon's command-line flags. Non-empty overrides win
// over the config file.
type options struct {
	configPath  string
	logLevel    string
	poll        string
	metricsAddr string
	noReconcile bool
	check       bool
	version     bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("trackarrd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "config file (default: TRACKARR_CONFIG, ./config.toml, then XDG)")
	fs.StringVar(&opts.logLevel, "log-level", "", "override server.log_level (debug, info, warn, error)")
	fs.StringVar(&opts.poll, "poll", "", "override tracking.poll_schedule, e.g. \"@every 30s\"")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "override server.metrics_addr")
	fs.BoolVar(&opts.noReconcile, "no-reconcile", false, "track split-season parts without renumbering or renaming")
	fs.BoolVar(&opts.check, "check", false, "validate the config, print what would run and exit")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}
	if opts.version {
		fmt.Printf("trackarrd %s\n", version)
		return
	}
	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "trackarrd: %v\n", err)
		os.Exit(1)
	}
}
