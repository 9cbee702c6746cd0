package main

import "github.com/ogulcanaydogan/autoapi/internal/cli"

func main() {
	cli.Execute()
}
