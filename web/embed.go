package web

import "embed"

// TemplatesFS embeds HTML templates for server-side rendering.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds static assets (css/js).
//
//go:embed static/*
var StaticFS embed.FS

// DefaultPanels is the built-in dashboard content used when no panels file
// is configured.
//
//go:embed content/panels.yaml
var DefaultPanels []byte
