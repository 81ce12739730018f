// Package logging provides subsystem-tagged structured logging for lobbyctl.
//
// It is a thin layer over log/slog. Every record carries a "subsystem"
// attribute so output from the Identity client, the Lobby client, the
// session store and the step machines can be told apart.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelWarn, os.Stderr)
//
//	logging.Info("Lobby", "Fetched %d calendar entries", len(entries))
//	logging.Debug("ConfigLoader", "Loaded configuration from %s", path)
//	logging.Error("Identity", err, "Activation failed")
//
// Values that grant access (passwords, PKCE verifiers, authorization codes,
// session cookies) must never be passed to these functions.
package logging
