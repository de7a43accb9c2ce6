package main

import "repolint/internal/cli"

func main() {
	cli.Execute()
}
