// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage (~/.heisync/config.toml)
//
// An example configuration:
//
//	index_endpoint = "https://hei.example.org/api/index"
//	field_exclude = ["contact"]
//	remote_exclude = ["drupal_internal__id"]
//	remote_include = []
//
//	[field_mapping]
//	name = "label"
//	website_url = "website"
//
//	[remote]
//	timeout = "30s"
//	rate_limit = 2.0
//
//	[cache]
//	ttl = "1h"
package file
