// Package config handles loading and validating the audio controller's
// configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with AUDIOCONTROL_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Credentials (MQTT password, InfluxDB token) should be set through the
// environment rather than the file.
//
// Usage:
//
//	cfg, err := config.Load("configs/audiocontrol.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Controller.DefaultClass)
package config
