package main

import "github.com/agentic-research/idsieve/cmd"

func main() {
	cmd.Execute()
}
