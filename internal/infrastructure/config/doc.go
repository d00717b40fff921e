// Package config handles loading and validating Nevoton bridge configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Sensitive values (device password, MQTT credentials, InfluxDB token)
//     should be set via environment variables
//   - The config file should have restricted permissions (0600)
//   - The device password is hashed once at client construction and the
//     plaintext is never logged or transmitted
//
// Performance Characteristics:
//   - Configuration is loaded once at startup
//   - No runtime overhead after initial load
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Device.Host)
package config
