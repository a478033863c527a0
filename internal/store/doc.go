package store

// Package store owns the JSON documents kept in the cache directory: the
// playlist index, the redownload queue, and per-file metadata sidecars.
// Each document is rewritten wholesale through an atomic rename.
