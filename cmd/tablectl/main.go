// Command tablectl is an operator TUI over a live table's lock manager
// state: current lock state, FIFO waiter queue depth, and the last detected
// deadlock cycle on each watched table (§4.3, §4.9).
//
// Run with no arguments to watch a small self-contained demo of two tables
// deliberately cross-locked against each other, which lets the deadlock
// detector fire every few seconds so its output is visible without wiring
// tablectl into a real engine.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := runDemo(); err != nil {
		fmt.Fprintf(os.Stderr, "tablectl: %v\n", err)
		os.Exit(1)
	}
}
