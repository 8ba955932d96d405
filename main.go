package main

import "github.com/joern1811/chatstats/internal/cmd"

func main() {
	cmd.Execute()
}
