// Package ui holds the browser player and the help manual served by the
// HTTP front door. Pages are embedded in the binary; manual text is
// localized via Localization.
package ui
