// Command classroomctl is the CLI front end for the classroom
// repository orchestration engine: it parses flags, calls straight
// into the internal/ entry points, and translates the result into an
// exit code.
package main

import (
	"os"

	"github.com/edu-tools/classroom-repos/cmd/classroomctl/commands"
	"github.com/edu-tools/classroom-repos/pkg/log"
)

func main() {
	log.InitStructureLogConfig()
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
