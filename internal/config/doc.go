// Package config provides configuration parsing for cmd/weave serve.
//
// The configuration is stored in weave.json next to the binary or
// passed via --config.
//
// # Configuration File Structure
//
//	{
//	  "host": "0.0.0.0",
//	  "port": 8080,
//	  "read_timeout_ms": 60000,
//	  "telemetry": {
//	    "enabled": true,
//	    "namespace": "weave"
//	  },
//	  "snapshot": {
//	    "enabled": false,
//	    "bucket": "my-bucket",
//	    "prefix": "weave/snapshots/",
//	    "region": "us-east-1"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    cfg = config.New()
//	}
//	fmt.Println("Listening on", cfg.Address())
package config
