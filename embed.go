package folio

import "embed"

// EmbeddedAssets contains static assets shipped with the app:
// editor.js, the admin editor client.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
