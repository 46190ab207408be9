package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hardwarebob/reftar/format"
)

func cmdInfo(args []string) error {
	fset := flag.NewFlagSet("info", flag.ExitOnError)
	archivePath := fset.String("archive", "", "path to the archive file to inspect")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if *archivePath == "" {
		return fmt.Errorf("usage: reftar info -archive=in.reftar")
	}

	in, err := os.Open(*archivePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", *archivePath, err)
	}
	defer in.Close()

	header, err := format.ReadArchiveHeader(in)
	if err != nil {
		return fmt.Errorf("reading archive header: %w", err)
	}

	fmt.Printf("version: %d\n", header.Version)
	fmt.Printf("block size: %d\n", header.BlockSize)
	return nil
}
