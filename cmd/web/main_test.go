package main

import (
	"os"
	"testing"
)

// TestMain runs the tests from the module root so that relative paths such as
// ui/templates resolve the same way they do when the server runs in production.
func TestMain(m *testing.M) {
	if err := os.Chdir("../.."); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
