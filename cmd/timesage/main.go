package main

import "github.com/emiliopalmerini/timesage/internal/cli"

func main() {
	cli.Execute()
}
