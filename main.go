package main

import (
	"github.com/mdexport/mdexport/cmd"
	"github.com/mdexport/mdexport/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
