package main

import "github.com/tranvictor/bridgekit/cmd"

func main() {
	cmd.Execute()
}
