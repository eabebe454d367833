package main

import "langfile/internal/cli"

func main() {
	cli.Execute()
}
