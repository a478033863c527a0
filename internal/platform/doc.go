package platform

// Package platform contains OS integration and external tooling glue:
// filename sanitizing, filesystem helpers and fuzzy file lookup, browser
// launching, and playlist expansion via the ytdlp library.
