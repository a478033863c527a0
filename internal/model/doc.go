package model

// Package model defines domain data structures shared across the app:
// playlist index entries, redownload queue entries, sidecar metadata,
// download tasks published to the player, and remote playlists.
