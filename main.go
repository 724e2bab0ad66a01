package main

import "github.com/tristendillon/depcheck/cmd"

func main() {
	cmd.Execute()
}
