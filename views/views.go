// Package views holds the default templ components for a folio site.
// Sites can replace any of them through folio.ViewFuncs.
package views

import "github.com/eringen/folio"

// Default returns the built-in views for site.
func Default(site folio.SiteConfig) folio.ViewFuncs {
	return folio.ViewFuncs{
		Home:            Home,
		BlogSection:     BlogSection,
		Post:            Post,
		Page:            Page,
		Social:          Social,
		AdminLogin:      AdminLogin(site),
		AdminDashboard:  AdminDashboard,
		AdminEditor:     AdminEditor,
		AdminSubmission: AdminSubmission,
		NotFound:        NotFound,
		ServerError:     ServerError,
	}
}
