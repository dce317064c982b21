// Command plenar loads parliamentary protocol exports into a relational
// store.
package main

import (
	"os"

	"github.com/roach88/plenar/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewRootCommand()))
}
