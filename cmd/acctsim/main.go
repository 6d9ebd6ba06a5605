package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/MacroPower/acctsim/internal/cli"
)

const (
	cmdName = "acctsim"

	shortDesc = "Simulate concurrent account holders sharing one balance."
	longDesc  = `Simulate concurrent account holders sharing one balance.

Each account holder runs in its own goroutine and issues a fixed number of
randomly chosen operations: reading the balance, depositing, or withdrawing.
Reads and deposits are serialized by the ledger lock. Withdrawals also pass
through an admission gate, so only one withdrawal checks and debits the
balance at a time. A withdrawal larger than the balance is declined.

When every holder has finished, the ledger is released and a summary of the
operations and final balance is printed.
`
)

func main() {
	cmd := cli.NewRootCmd(cmdName, shortDesc, longDesc)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimLeft(err.Error(), "\n"))
		os.Exit(1)
	}
}
