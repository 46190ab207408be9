// Command reftar creates and extracts reftar archives from the command
// line: a thin wrapper over the reftar package, in the same spirit as
// distri's cmd/distri — subcommands are plain functions dispatched from a
// verb table, each parsing its own flag.FlagSet.
package main

import (
	"fmt"
	"os"
)

type verb func(args []string) error

func funcmain() error {
	verbs := map[string]verb{
		"create":  cmdCreate,
		"extract": cmdExtract,
		"list":    cmdList,
		"info":    cmdInfo,
	}

	args := os.Args[1:]
	if len(args) == 0 {
		return fmt.Errorf("usage: reftar <create|extract|list|info> [options]")
	}

	name, rest := args[0], args[1:]
	fn, ok := verbs[name]
	if !ok {
		return fmt.Errorf("unknown command %q; want create, extract, list, or info", name)
	}
	return fn(rest)
}

func main() {
	if err := funcmain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
