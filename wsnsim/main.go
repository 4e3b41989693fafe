// Package main is the wsnsim command.
package main

import "github.com/sarchlab/wsnsim/wsnsim/cmd"

func main() {
	cmd.Execute()
}
