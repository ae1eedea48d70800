package main

import "github.com/pfrederiksen/atm-watch/internal/cli"

func main() {
	cli.Execute()
}
