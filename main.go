package main

import "github.com/cppla/vitalog/cmd"

func main() {
	cmd.Execute()
}
