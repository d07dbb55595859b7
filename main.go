package main

import "github.com/2arnav4/RaceOracle/cmd"

func main() {
	cmd.Execute()
}
