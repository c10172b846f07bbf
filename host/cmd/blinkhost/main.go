package main

import "blinkled/host/cli"

func main() {
	cli.Execute()
}
