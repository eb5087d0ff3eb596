package chatflow

import _ "embed"

// Version is the release version of chatflow.
//
//go:embed VERSION
var Version string
