//go:build mage

// Package main contains Mage build targets for pubpeer-harvest developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the harvest expects.
var projectDirs = []string{
	"data",
	"results",
}

const (
	binDir  = "bin"
	binName = "pubpeer-harvest"
	cmdPkg  = "./cmd/pubpeer-harvest"
)

// Init creates the project directory structure for the harvest.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
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

// Test runs the full test suite.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Lint runs go vet across the module.
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Discover builds the binary and runs phase 1 against the default input.
func Discover() error {
	mg.Deps(Build, Init)
	return sh.RunV(filepath.Join(binDir, binName), "discover")
}

// Enrich builds the binary and runs phase 2 against the discovery output.
func Enrich() error {
	mg.Deps(Build, Init)
	return sh.RunV(filepath.Join(binDir, binName), "enrich")
}

// Clean removes build artifacts. Harvested results are kept.
func Clean() error {
	return os.RemoveAll(binDir)
}
