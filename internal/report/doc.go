// Package report generates academic citations and evidence reports for
// cached videos from their sidecar metadata. Generated documents are written
// under the citations/ and evidence_reports/ directories of the cache.
package report
