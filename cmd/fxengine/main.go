package main

import "github.com/rustyeddy/fxengine/internal/cli"

func main() {
	cli.Execute()
}
