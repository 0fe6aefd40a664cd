package main

import "grepowski/cmd"

func main() {
	cmd.Execute()
}
