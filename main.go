package main

import "github.com/papapumpkin/modeshift/cmd"

func main() {
	cmd.Execute()
}
