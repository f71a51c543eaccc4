package main

import "mention-picker/cmd"

func main() {
	cmd.Execute()
}
