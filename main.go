package main

import "listforge/cmd"

func main() {
	cmd.Execute()
}
