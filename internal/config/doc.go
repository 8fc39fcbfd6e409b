// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// # Configuration Precedence
//
// Values are resolved in this order, later sources winning:
//   - Built-in defaults (Default)
//   - ~/.ollamachat/config.toml, or config.json, or the --config path
//   - Environment variables (OLLAMACHAT_*)
//   - Command-line flags, applied by the cli package
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
//	    BaseURL: cfg.BaseURL,
//	    Timeout: cfg.Timeout(),
//	})
package config
