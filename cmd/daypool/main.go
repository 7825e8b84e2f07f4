// Command daypool serves each user one content item per day, rotated
// deterministically through their age bracket's pool.
package main

import (
	"os"

	"github.com/Uvecodes/daypool/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
