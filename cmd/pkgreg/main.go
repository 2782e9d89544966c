// Copyright © 2018 One Concern

package main

import (
	"github.com/oneconcern/pkgreg/cmd/pkgreg/cmd"
)

func main() {
	cmd.Execute()
}
