package main

import "github.com/rocketplan/uiflow/pkg/cli"

func main() {
	cli.Execute()
}
