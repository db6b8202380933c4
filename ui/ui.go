// Package ui holds the server-rendered landing page.
package ui

import "embed"

//go:embed templates/*.gohtml
var Files embed.FS
