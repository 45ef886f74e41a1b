package main

import "github.com/lantern-study/lantern/cli"

func main() {
	cli.Execute()
}
