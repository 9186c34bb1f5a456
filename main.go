package main

import "github.com/Ethernal-Tech/bridge-relayer/cli"

func main() {
	cli.NewRootCommand().Execute()
}
