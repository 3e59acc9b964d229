package main

import "github.com/ingoeichhorst/debtgraph/cmd"

func main() {
	cmd.Execute()
}
