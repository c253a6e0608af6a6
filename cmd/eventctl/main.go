// eventctl is the operator tool for the Eventful services: it prints the
// catalog, runs the wallet callback rules against a saved payload, renders
// ticket PDFs and shows the wallet_sendCalls intent a checkout would submit.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"
)

type command struct {
	summary string
	run     func(args []string, stdout io.Writer) error
}

var commands = map[string]command{
	"events":     {"List the event catalog", runEvents},
	"validate":   {"Run the data callback rules against a payload file", runValidate},
	"ticket-pdf": {"Render a ticket PDF", runTicketPDF},
	"send-calls": {"Print the wallet_sendCalls params for an order total", runSendCalls},
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(stdout)
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		printUsage(stdout)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return cmd.run(args[1:], stdout)
}

func printUsage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "Usage: eventctl <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-12s %s\n", name, commands[name].summary)
	}
}

// newFlagSet returns a flag set with the shared --config flag.
func newFlagSet(name string, configPath *string) *pflag.FlagSet {
	flags := pflag.NewFlagSet("eventctl "+name, pflag.ContinueOnError)
	flags.StringVarP(configPath, "config", "c", "", "YAML config file (default $CONFIG_FILE)")
	flags.SortFlags = false
	return flags
}

func parse(flags *pflag.FlagSet, args []string) error {
	if err := flags.Parse(args); err != nil {
		return err
	}
	if rest := flags.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}
	return nil
}
