package main

import "logviewer/cli"

func main() {
	cli.Execute()
}
