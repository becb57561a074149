package common

import (
	"os"
)

const (
	// mode_env is the name environment variable that set the running mode of keeper.
	// See below constants for list of available modes.
	mode_env = "TRANSFER_ENV"

	// DEV_MODE is default running mode. It is used for development.
	DEV_MODE = "dev"
	// STAGING_MODE is the running mode in staging environment.
	STAGING_MODE = "staging"
	// PRODUCTION_MODE is the running mode in production environment.
	PRODUCTION_MODE = "production"
	// SEPOLIA_MODE is the running mode for the sepolia test network.
	SEPOLIA_MODE = "sepolia"
	// SIMULATION_MODE is running mode in simulation. Transfers are triggered
	// over HTTP instead of a ticker.
	SIMULATION_MODE = "simulation"
)

var validModes = map[string]struct{}{
	DEV_MODE:        {},
	STAGING_MODE:    {},
	PRODUCTION_MODE: {},
	SEPOLIA_MODE:    {},
	SIMULATION_MODE: {},
}

// RunningMode returns the current running mode of application.
func RunningMode() string {
	mode, ok := os.LookupEnv(mode_env)
	if !ok {
		return DEV_MODE
	}
	_, valid := validModes[mode]
	if !valid {
		return DEV_MODE
	}
	return mode
}
