// SPDX-License-Identifier: EPL-2.0

// ppsalign cuts wall clock aligned audio out of a directory of recorder
// shards carrying in-band PPS markers.
//
// Usage:
//
//	ppsalign <command> [flags]
//
// Commands:
//
//	cut       extract the first channel of an interval into one file
//	splice    like cut, leaving out the windows of a break table
//	demux     rebuild both mic groups of a multiplexed recording
//	markers   list the markers found in the shards
//	cut-one   copy a raw sample range out of a single shard
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

type command struct {
	name  string
	usage string
	run   func(args []string, stdout, stderr io.Writer) error
}

var commands = []command{
	{"cut", "extract the first channel of an interval into one file", runCut},
	{"splice", "like cut, leaving out the windows of a break table", runSplice},
	{"demux", "rebuild both mic groups of a multiplexed recording", runDemux},
	{"markers", "list the markers found in the shards", runMarkers},
	{"cut-one", "copy a raw sample range out of a single shard", runCutOne},
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errors.New("no command given")
	}

	name := args[0]
	switch name {
	case "-h", "--help", "help":
		printUsage(stdout)
		return nil
	}

	for _, c := range commands {
		if c.name == name {
			err := c.run(args[1:], stdout, stderr)
			if errors.Is(err, pflag.ErrHelp) {
				return nil
			}
			return err
		}
	}

	printUsage(stderr)
	return fmt.Errorf("unknown command %q", name)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ppsalign <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s  %s\n", c.name, c.usage)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, `Run "ppsalign <command> --help" for the flags of a command.`)
}
