package main

import "github.com/recall-project/recall/internal/cli"

func main() {
	cli.Execute()
}
