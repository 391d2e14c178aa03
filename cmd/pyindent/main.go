package main

import "pyindent/internal/cli"

func main() {
	cli.Execute()
}
