package main

import "github.com/tiletex/tiletex/cmd"

func main() {
	cmd.Execute()
}
