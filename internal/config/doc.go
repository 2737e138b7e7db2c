// Package config loads the xkcd CLI settings file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided (--config), use it
//  2. Otherwise, use ~/.config/xkcd/config.toml
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing or blank, use defaults
//
// Command line flags are applied on top of the loaded values by the caller.
//
// # TOML Format
//
//	base_url = "https://xkcd.com"
//	cache_path = "~/.cache/xkcd-cli/cache.json"
//	cache_ttl = "24h"
//	protocol = "auto"          # auto, kitty, iterm, sixel or none
//	opener = "xdg-open"        # viewer used when inline images are unavailable
//	theme = "Dracula"          # picker theme: Dracula or Slate
//	terminal_scale_up = true
//	log_level = "warn"
//	log_file = "~/.local/state/xkcd/xkcd.log"
//	probe_timeout_ms = 200
//
// Every field is optional. Tilde expansion is performed on paths. Invalid
// durations or protocol names are reported as errors rather than ignored.
package config
