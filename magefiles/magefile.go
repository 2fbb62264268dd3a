//go:build mage

// Package main contains Mage build targets for earningscheck.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "earningscheck"
	cmdPkg  = "./cmd/earningscheck"
)

// dataDirs lists the directories the default config expects.
var dataDirs = []string{
	"data/claims",
	"data/financials",
	"data/transcripts",
	"data/verdicts",
}

// Default target when mage is run without arguments.
var Default = Build

// Init creates the data directory structure.
func Init() error {
	for _, dir := range dataDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	mg.Deps(Vet)
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build output and the result cache.
func Clean() error {
	for _, p := range []string{binDir, ".earningscheck-cache"} {
		if err := sh.Rm(p); err != nil {
			return err
		}
	}
	return nil
}
