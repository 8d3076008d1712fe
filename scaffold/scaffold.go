// Package scaffold provides the embedded starter files written by
// "folio new": configuration, static assets and sample content.
package scaffold

import "embed"

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS
