package main

import "ewah/cmd/inspect/cmd"

func main() {
	cmd.Execute()
}
