package main

import "github.com/gaurav-prasanna/pagechunk/cmd"

func main() {
	cmd.Execute()
}
