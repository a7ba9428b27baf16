package main

import "github.com/jinno0sec/copilot-instruction-eval/cmd"

func main() {
	cmd.Execute()
}
