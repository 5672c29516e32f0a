package main

import "github.com/example/venue-opener/cmd"

func main() {
	cmd.Execute()
}
