package main

import "ios-deploy/internal/cli"

func main() {
	cli.Execute()
}
