package server

import "embed"

//go:embed web
var assets embed.FS
