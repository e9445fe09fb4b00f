// The main package for the linkrot executable.
package main

import (
	"github.com/JakeFAU/linkrot/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
