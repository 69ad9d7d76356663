package main

import "Tonelink/cmd"

func main() {
	cmd.Execute()
}
