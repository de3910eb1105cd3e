package main

import "lend-agent/cmd/lend-agent/cmd"

func main() {
	cmd.Execute()
}
