package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"microkit/kernel"
	"microkit/kernelcfg"
)

var keypadCmd = &cobra.Command{
	Use:   "keypad",
	Short: "feed terminal keystrokes into a kernel FIFO, standing in for a keypad ISR",
	Long: `keypad puts the terminal into raw mode and pushes every keystroke into
the interrupt-to-thread FIFO with a non-blocking Put, the same call a real
keypad's GPIO interrupt handler would make. A single consumer thread drains
the FIFO and echoes what it read. Press q to quit.`,
	Args: cobra.NoArgs,
	RunE: runKeypad,
}

func init() {
	rootCmd.AddCommand(keypadCmd)
}

func runKeypad(cmd *cobra.Command, args []string) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("keypad requires an interactive terminal")
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, oldState)

	cfg := kernelcfg.Default()
	cfg.NumThreads = 1
	if err := kernel.Init(cfg); err != nil {
		return err
	}

	var keys kernel.FIFO
	kernel.FIFOInit(&keys, cfg.FIFOCapacity)

	done := make(chan struct{})
	if err := kernel.AddThreads(func() {
		for {
			r := kernel.FIFOGet(0, &keys)
			if r == 'q' {
				close(done)
				return
			}
			fmt.Fprintf(os.Stderr, "\r\nkey: %c\r\n", rune(r))
		}
	}); err != nil {
		return err
	}
	go kernel.Launch()

	buf := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(buf); err != nil {
			return err
		}
		if !kernel.FIFOPut(&keys, int32(buf[0])) {
			fmt.Fprint(os.Stderr, "\r\nkey dropped: fifo full\r\n")
		}
		if buf[0] == 'q' {
			break
		}
	}

	<-done
	return nil
}
