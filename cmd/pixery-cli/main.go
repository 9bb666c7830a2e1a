package main

import "pixery/cmd/pixery-cli/cmd"

func main() {
	cmd.Execute()
}
