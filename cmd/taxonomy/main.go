package main

import "github.com/emrgen/taxonomy/cmd"

func main() {
	cmd.Execute()
}
