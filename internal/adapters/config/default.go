package config

import _ "embed"

// DefaultPourfile is the task file written by "pour init".
//
//go:embed pour.default.yaml
var DefaultPourfile []byte
