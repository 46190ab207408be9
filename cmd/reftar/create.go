package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hardwarebob/reftar"
)

// cmdCreate writes a reftar archive of the given paths. Directories are
// handed to reftar.Creator.AddDirectory, which walks them recursively; any
// other path is added with AddFile.
func cmdCreate(args []string) error {
	fset := flag.NewFlagSet("create", flag.ExitOnError)
	archivePath := fset.String("archive", "", "path to the archive file to create")
	blockSize := fset.Uint("block-size", 4096, "block size in bytes")
	if err := fset.Parse(args); err != nil {
		return err
	}
	sources := fset.Args()
	if *archivePath == "" || len(sources) == 0 {
		return fmt.Errorf("usage: reftar create -archive=out.reftar <path> [path...]")
	}

	out, err := os.Create(*archivePath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", *archivePath, err)
	}
	defer out.Close()

	c, err := reftar.NewCreator(out, reftar.WithBlockSize(uint32(*blockSize)))
	if err != nil {
		return err
	}

	for _, src := range sources {
		info, err := os.Lstat(src)
		if err != nil {
			return fmt.Errorf("stat %s: %w", src, err)
		}
		base := filepath.Base(src)
		if info.IsDir() {
			if err := c.AddDirectory(src, ""); err != nil {
				return err
			}
		} else {
			if err := c.AddFile(src, base); err != nil {
				return err
			}
		}
	}

	return c.Finish()
}
