// Command exclave runs the test-rig unit orchestrator: it loads jig,
// scenario, test, and interface unit files from a directory, drives
// them under the unit manager, and accepts client interfaces over TCP
// and WebSocket.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
