package main

import "github.com/beka-birhanu/vinom-evolve/cmd"

func main() {
	cmd.Execute()
}
