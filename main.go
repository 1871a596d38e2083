package main

import "github.com/mouse-blink/guardwrap/cmd"

func main() {
	cmd.Execute()
}
