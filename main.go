package main

import "github.com/petrel-ai/attendant/cmd"

func main() {
	cmd.Execute()
}
