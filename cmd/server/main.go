package main

import (
	"os"

	"fivechairs_admin/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.L().Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
