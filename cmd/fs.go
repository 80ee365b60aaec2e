package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"microkit/blockdev"
	"microkit/flash"
	"microkit/fs"
	"microkit/kernelcfg"
)

var fsCmd = &cobra.Command{
	Use:   "fs",
	Short: "inspect and mutate the flash file system",
}

var fsFormatCmd = &cobra.Command{
	Use:   "format",
	Short: "erase the disk range and reinitialize the directory and FAT",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, fsys, dev, err := openDisk()
		if err != nil {
			return err
		}
		defer dev.Close()

		if err := fsys.Format(dev.Erase); err != nil {
			return err
		}
		fmt.Println("formatted", GetDiskImage())
		return nil
	},
}

var fsMountCmd = &cobra.Command{
	Use:   "mount",
	Short: "read the metadata sector and report what files exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, fsys, dev, err := openDisk()
		if err != nil {
			return err
		}
		defer dev.Close()

		if err := fsys.Mount(); err != nil {
			return err
		}
		return listFiles(fsys)
	},
}

var fsFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "mount, then immediately persist the RAM directory and FAT back",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, fsys, dev, err := openDisk()
		if err != nil {
			return err
		}
		defer dev.Close()

		if err := fsys.Mount(); err != nil {
			return err
		}
		if err := fsys.Flush(); err != nil {
			return err
		}
		fmt.Println("flushed", GetDiskImage())
		return nil
	},
}

var fsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "list files and their sector counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, fsys, dev, err := openDisk()
		if err != nil {
			return err
		}
		defer dev.Close()

		if err := fsys.Mount(); err != nil {
			return err
		}
		return listFiles(fsys)
	},
}

var fsCatCmd = &cobra.Command{
	Use:   "cat <file-number>",
	Short: "print a file's contents to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		num, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid file number %q: %w", args[0], err)
		}

		_, fsys, dev, err := openDisk()
		if err != nil {
			return err
		}
		defer dev.Close()

		if err := fsys.Mount(); err != nil {
			return err
		}

		for location := 0; ; location++ {
			buf, err := fsys.FileRead(num, location)
			if err != nil {
				break
			}
			os.Stdout.Write(buf[:])
		}
		return nil
	},
}

var fsWriteCmd = &cobra.Command{
	Use:   "write <file-number> <path>",
	Short: "append a local file's contents to a file, one sector at a time",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		num, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid file number %q: %w", args[0], err)
		}

		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}

		_, fsys, dev, err := openDisk()
		if err != nil {
			return err
		}
		defer dev.Close()

		if err := fsys.Mount(); err != nil {
			return err
		}

		for off := 0; off < len(data); off += blockdev.SectorSize {
			var buf [blockdev.SectorSize]byte
			copy(buf[:], data[off:])
			if err := fsys.FileAppend(num, buf); err != nil {
				return fmt.Errorf("append sector at offset %d: %w", off, err)
			}
		}

		if err := fsys.Flush(); err != nil {
			return err
		}
		fmt.Printf("wrote %d bytes to file %d\n", len(data), num)
		return nil
	},
}

func init() {
	fsCmd.AddCommand(fsFormatCmd, fsMountCmd, fsFlushCmd, fsLsCmd, fsCatCmd, fsWriteCmd)
	rootCmd.AddCommand(fsCmd)
}

func openDisk() (kernelcfg.Config, *fs.FileSystem, *flash.Device, error) {
	cfg := kernelcfg.Default()
	dev, err := flash.NewMapped(GetDiskImage(), cfg.DiskStart, int(cfg.DiskSize()))
	if err != nil {
		return cfg, nil, nil, err
	}
	bdev := blockdev.New(dev, cfg)
	return cfg, fs.New(bdev, cfg), dev, nil
}

func listFiles(fsys *fs.FileSystem) error {
	any := false
	for num := 0; num <= kernelcfg.MaxFileNumber; num++ {
		size, err := fsys.FileSize(num)
		if err != nil || size == 0 {
			continue
		}
		any = true
		fmt.Printf("%d\t%d sectors\n", num, size)
	}
	if !any {
		fmt.Println("(no files)")
	}
	return nil
}
