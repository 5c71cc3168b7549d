package main

import "github.com/mcoot/killergame/internal/cli"

func main() {
	cli.Execute()
}
