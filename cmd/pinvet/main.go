// Package main implements the pinvet CLI.
//
// pinvet runs the pinned-element guarantee verifier against the bundled
// reference containers and against scripted mutation scenarios.
//
// Usage:
//
//	pinvet check paged --len 500      # Verify G1-G4 on a container
//	pinvet scenarios ./scenarios      # Run scripted scenarios
//	pinvet containers                 # List bundled containers
//	pinvet check fixed --db pinvet.db # Record the run
//	pinvet history --db pinvet.db     # List recorded runs
package main

import (
	"os"

	"github.com/roach88/pinvec/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
