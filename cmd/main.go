package main

import (
	cmd "github.com/karangoraniya/subscription-icp/cmd/clicmd"
)

func main() {
	cmd.Execute()
}
