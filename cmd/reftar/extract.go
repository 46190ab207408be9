package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hardwarebob/reftar"
)

func cmdExtract(args []string) error {
	fset := flag.NewFlagSet("extract", flag.ExitOnError)
	archivePath := fset.String("archive", "", "path to the archive file to extract")
	outputDir := fset.String("output", ".", "directory to extract into")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if *archivePath == "" {
		return fmt.Errorf("usage: reftar extract -archive=in.reftar [-output=dir]")
	}

	in, err := os.Open(*archivePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", *archivePath, err)
	}
	defer in.Close()

	e, err := reftar.NewExtractor(in, *outputDir)
	if err != nil {
		return err
	}
	return e.ExtractAll()
}
