package main

import "github.com/baileyrd/naner-sub002/internal/cli"

func main() {
	cli.Execute()
}
