package constants

import "strings"

// SolExt is the only file extension the discovery layer picks up.
const SolExt = "sol"

// DefaultNameFilter is the lowercase substring a vault filename must
// contain to be considered a credential store. Overridable via config.
const DefaultNameFilter = "ptd"

// AllowedExtensions holds the allowed file extensions for vault discovery.
var AllowedExtensions = map[string]struct{}{
	SolExt: {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
