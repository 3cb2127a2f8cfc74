package main

import "github.com/byterings/gix/cmd"

func main() {
	cmd.Execute()
}
