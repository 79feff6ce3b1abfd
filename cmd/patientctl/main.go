// Command patientctl is a terminal front end for the patient API: it lists and
// edits records, exports the list and relays contact messages.
package main

import (
	"os"

	"github.com/itakarlapalli/subcentre/pkg/logger"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.SetOutput(os.Stderr)
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
