// This program provides a command line client for the node's public API.
package main

import (
	"github.com/chainforge/minichain/app/tooling/nodecli/cmd"
)

func main() {
	cmd.Execute()
}
