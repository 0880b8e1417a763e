package main

import "github.com/odatascope/odatascope/cmd"

func main() {
	cmd.Execute()
}
