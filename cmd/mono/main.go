package main

import "martianoff/mono/cmd/mono/commands"

func main() {
	commands.Execute()
}
