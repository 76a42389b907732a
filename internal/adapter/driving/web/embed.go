package web

import "embed"

// StaticFS holds the stylesheet and the CSRF header script.
//
//go:embed static/*
var StaticFS embed.FS
