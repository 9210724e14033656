// Package config loads the capture proxy configuration.
//
// Configuration comes from a YAML or JSON file, then environment
// overrides (LSD_LISTEN, LSD_UPSTREAM, LSD_LOG_LEVEL), then command-line
// flags applied by the caller. Missing fields take the values from
// Default.
//
//	cfg, err := config.LoadFromFile("lsd.yaml")
//	if err != nil {
//		return err
//	}
//	cfg.ApplyEnv(os.LookupEnv)
//	if err := cfg.Validate(); err != nil {
//		return err
//	}
package config
