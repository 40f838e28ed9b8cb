//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Pipeline builds the CLI and runs every stage against the built-in sample
// corpus: scan, extract, classify, trends, store ingest. Useful as a smoke
// test after changes.
func Pipeline() error {
	mg.Deps(Build)

	bin := filepath.Join(binDir, binName)
	stages := [][]string{
		{"scan", "--sample", "--force"},
		{"extract", "--batch"},
		{"classify"},
		{"trends", "analyze"},
		{"store", "ingest"},
	}
	for _, stage := range stages {
		fmt.Printf("==> %s\n", stage[0])
		if err := sh.RunV(bin, stage...); err != nil {
			return fmt.Errorf("%s stage: %w", stage[0], err)
		}
	}
	return nil
}

// Clean removes the built binary and all pipeline outputs.
func Clean() error {
	for _, dir := range []string{binDir, "corpus", "analysis"} {
		if err := sh.Rm(dir); err != nil {
			return fmt.Errorf("removing %s: %w", dir, err)
		}
	}
	fmt.Println("Cleaned.")
	return nil
}
