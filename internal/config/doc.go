// Package config holds the explicit configuration value passed to every
// meetsync component.
//
// All settings come from environment-style key/value pairs and are optional.
// An unset setting is represented by a Setting whose IsSet reports false, so
// "not configured" is a checkable state rather than an empty-string sentinel.
// Features that need a setting call Require and render the resulting
// *MissingError as a "Configuration needed" launcher item instead of failing.
//
// Example usage:
//
//	cfg, err := config.LoadWithEnvFile("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.RequireMeetings(); err != nil {
//	    // show configuration hint
//	}
package config
