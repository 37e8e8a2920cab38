package main

import "github.com/emiliopalmerini/experimenter/internal/cli"

func main() {
	cli.Execute()
}
