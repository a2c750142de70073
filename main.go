package main

import "github.com/agentic-research/margoviz/cmd"

func main() {
	cmd.Execute()
}
