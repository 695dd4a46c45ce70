// mockjailhouse stands in for the jailhouse administration binary so the
// driver and CLI can be exercised without the hypervisor. It answers
// --version with the expected banner and serves `cell list` from a canned
// table or a file.
//
// Environment:
//
//	MOCKJAILHOUSE_TABLE  path of a file holding the `cell list` output
//	MOCKJAILHOUSE_EXIT   exit code forced on every cell subcommand
package main

import (
	"fmt"
	"os"
	"strconv"
)

const banner = "Jailhouse management tool (mock)"

const defaultTable = "" +
	"ID      Name                    State           Assigned CPUs           Failed CPUs             \n" +
	"0       root-cell               running         0-3                                             \n" +
	"1       demo-inmate             shut down       4,5                                             \n"

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: mockjailhouse --version | cell <list|start|shutdown|destroy> [id]")
		os.Exit(2)
	}

	if code := forcedExit(); code != 0 && args[0] == "cell" {
		fmt.Fprintf(os.Stderr, "mockjailhouse: forced failure (%d)\n", code)
		os.Exit(code)
	}

	switch args[0] {
	case "--version":
		fmt.Println(banner + " v0.0")
	case "cell":
		cell(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		os.Exit(2)
	}
}

func cell(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "cell subcommand required")
		os.Exit(2)
	}
	switch args[0] {
	case "list":
		fmt.Print(table())
	case "start", "shutdown", "destroy":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "cell %s needs a cell id\n", args[0])
			os.Exit(2)
		}
		if _, err := strconv.Atoi(args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "bad cell id %q\n", args[1])
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown cell subcommand: %s\n", args[0])
		os.Exit(2)
	}
}

func table() string {
	path := os.Getenv("MOCKJAILHOUSE_TABLE")
	if path == "" {
		return defaultTable
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading %s: %v\n", path, err)
		os.Exit(1)
	}
	return string(data)
}

func forcedExit() int {
	v := os.Getenv("MOCKJAILHOUSE_EXIT")
	if v == "" {
		return 0
	}
	code, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return code
}
