// Command moneylang is the Money-lang ahead-of-time compiler's CLI: a
// "frontend" subcommand turning source text into a textual AST file, and a
// "backend" subcommand lowering that AST all the way to a native ELF64
// executable.
package main

import "github.com/moneylang/moneylang/cmd/moneylang/cmd"

func main() {
	cmd.Execute()
}
