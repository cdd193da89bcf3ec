package spacetraveling

import "embed"

// EmbeddedAssets contains the static assets served under /public/:
// app.css, more.js and favicon.svg.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
