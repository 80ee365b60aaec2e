package cmd

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"microkit/kernel"
	"microkit/kernelcfg"
)

var runDuration time.Duration

var runCmd = &cobra.Command{
	Use:   "run <demo>",
	Short: "run a kernel-primitive demo (counters, mailbox, fifo)",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().DurationVar(&runDuration, "duration", time.Second, "how long to let the demo run before reporting")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	switch args[0] {
	case "counters":
		return runCounters()
	case "mailbox":
		return runMailbox()
	case "fifo":
		return runFIFO()
	default:
		return fmt.Errorf("unknown demo %q (want counters, mailbox, or fifo)", args[0])
	}
}

// runCounters reproduces the round-robin fairness scenario: three threads,
// each spinning a per-thread counter, scheduled on a 2 ms slice.
func runCounters() error {
	cfg := kernelcfg.Default()
	if err := kernel.Init(cfg); err != nil {
		return err
	}

	var counters [3]int64
	entries := make([]func(), 3)
	for i := range entries {
		idx := i
		entries[idx] = func() {
			for {
				atomic.AddInt64(&counters[idx], 1)
				kernel.CheckPoint(idx)
			}
		}
	}
	if err := kernel.AddThreads(entries...); err != nil {
		return err
	}

	go kernel.Launch()
	time.Sleep(runDuration)

	for i, c := range counters {
		fmt.Printf("thread %d: %d iterations\n", i, atomic.LoadInt64(&c))
	}
	return nil
}

// runMailbox reproduces the mailbox-loss scenario: a producer sends three
// values back to back with no consumer running, then a single receive
// reports the most recent value and the lost count.
func runMailbox() error {
	cfg := kernelcfg.Default()
	cfg.NumThreads = 1
	if err := kernel.Init(cfg); err != nil {
		return err
	}
	if err := kernel.AddThreads(func() {}); err != nil {
		return err
	}

	var mb kernel.Mailbox
	kernel.MailboxInit(&mb)

	kernel.MailSend(&mb, 7)
	kernel.MailSend(&mb, 8)
	kernel.MailSend(&mb, 9)

	got := make(chan int32, 1)
	go func() { got <- kernel.MailRecv(0, &mb) }()
	go kernel.Launch()

	v := <-got
	fmt.Printf("received: %d\n", v)
	fmt.Printf("lost: %d\n", mb.Lost())
	return nil
}

// runFIFO reproduces the at-capacity scenario: a 10-slot queue filled with
// twelve values and no consumer, then drained.
func runFIFO() error {
	cfg := kernelcfg.Default()
	cfg.NumThreads = 1
	if err := kernel.Init(cfg); err != nil {
		return err
	}
	if err := kernel.AddThreads(func() {}); err != nil {
		return err
	}

	var f kernel.FIFO
	kernel.FIFOInit(&f, cfg.FIFOCapacity)

	for i := int32(1); i <= 12; i++ {
		f.PeekNext() // touch the accessor the way a monitoring thread would
		kernel.FIFOPut(&f, i)
	}

	fmt.Printf("lost: %d\n", f.Lost())

	values := make(chan int32, cfg.FIFOCapacity)
	go func() {
		for i := 0; i < cfg.FIFOCapacity; i++ {
			values <- kernel.FIFOGet(0, &f)
		}
		close(values)
	}()
	go kernel.Launch()

	fmt.Print("drained:")
	for v := range values {
		fmt.Printf(" %d", v)
	}
	fmt.Println()
	return nil
}
