package main

import "github.com/rinadelph/cursor-automator/cmd"

func main() {
	cmd.Execute()
}
