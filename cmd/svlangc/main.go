// Command svlangc is the CLI entry point for the svlang elaboration engine.
package main

import "github.com/svlang/elaborate/pkg/cmd"

func main() {
	cmd.Execute()
}
