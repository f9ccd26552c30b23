// Command ocr is the CLI surface over the core pipeline: ReadOne/ReadMany
// are the library's only real contract (spec §6 calls the CLI informative,
// not load-bearing), so this binary just wires flags to those two calls and
// prints the §6 JSON schema.
package main

import "github.com/jrbeckett/speedreader/cmd/ocr/cmd"

func main() {
	cmd.Execute()
}
