package main

import "github.com/rnwolfe/rack/cmd"

func main() {
	cmd.Execute()
}
