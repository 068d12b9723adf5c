package main

import "gamecatalog/cmd/commands"

func main() {
	commands.Execute()
}
