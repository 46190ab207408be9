package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hardwarebob/reftar"
)

func cmdList(args []string) error {
	fset := flag.NewFlagSet("list", flag.ExitOnError)
	archivePath := fset.String("archive", "", "path to the archive file to list")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if *archivePath == "" {
		return fmt.Errorf("usage: reftar list -archive=in.reftar")
	}

	in, err := os.Open(*archivePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", *archivePath, err)
	}
	defer in.Close()

	e, err := reftar.NewExtractor(in, os.TempDir())
	if err != nil {
		return err
	}
	files, err := e.ListFiles()
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Println(f)
	}
	return nil
}
