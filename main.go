// microkit hosts a simulated preemptive kernel and its write-once flash
// file system for running and inspecting the demos described in
// SPEC_FULL.md.
//
// Commands:
//
//	run <demo>        - Run a kernel-primitive demo (counters, mailbox, fifo)
//	fs format         - Erase the disk range and reinitialize the file system
//	fs mount          - Load the persisted directory and FAT, list files
//	fs flush          - Persist the RAM directory and FAT back to disk
//	fs ls             - List files and their sector counts
//	fs cat <num>      - Print a file's contents
//	fs write <n> <p>  - Append a local file's contents to file n
//	keypad            - Feed terminal keystrokes into a kernel FIFO
//	version           - Print version information
package main

import (
	"fmt"
	"os"

	"microkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
