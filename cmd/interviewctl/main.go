package main

import (
	_ "time/tzdata"

	"github.com/foxseedlab/callinterview/cmd/interviewctl/cmd"
)

func main() {
	cmd.Execute()
}
