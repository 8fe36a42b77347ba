package main

import "github.com/bryanchriswhite/swaysplit/cmd/swaysplit/commands"

func main() {
	commands.Execute()
}
