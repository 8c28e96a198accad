package main

import "github.com/altruan/pulpobot/internal/adapters/cli"

func main() {
	cli.Execute()
}
