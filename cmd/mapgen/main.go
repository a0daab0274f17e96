package main

import "github.com/Togather-Foundation/mapgen/cmd/mapgen/cmd"

func main() {
	cmd.Execute()
}
