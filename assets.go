// Package questlog provides embedded assets for production builds.
package questlog

import "embed"

// Embedded front end for production builds.
// In dev mode (IsDev=true), assets are loaded from disk for hot reloading.
// In production mode (IsDev=false), assets are served from this embedded filesystem.

//go:embed all:public
var PublicFS embed.FS
