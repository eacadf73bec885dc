// Package version holds the release version reported by the enricher CLI.
package version

// Current is the semantic version, without a "v" prefix.
const Current = "0.3.0"
