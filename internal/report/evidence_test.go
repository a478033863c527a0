package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/mucache/internal/platform"
	"github.com/ytget/mucache/internal/store"
)

type fixedProbe struct {
	seconds float64
	err     error
}

func (p fixedProbe) Duration(context.Context, string) (float64, error) {
	return p.seconds, p.err
}

func writeVideo(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestEvidenceMissingVideo(t *testing.T) {
	g, _ := newTestGenerator(t, nil)

	_, err := g.Evidence(context.Background(), "u", "nope.mp4", nil)
	var nf *VideoNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Video file not found: nope.mp4", err.Error())
}

func TestEvidenceWithoutMetadata(t *testing.T) {
	g, dir := newTestGenerator(t, nil)
	data := []byte("video bytes")
	writeVideo(t, dir, "clip.mp4", data)

	res, err := g.Evidence(context.Background(), "https://example.com/clip", "clip.mp4", nil)
	require.NoError(t, err)
	require.True(t, res.Success)

	body := res.Report.Report
	assert.Equal(t, res.EvidenceID, body.ReportID)
	assert.Equal(t, GeneratedBy, body.GeneratedBy)
	assert.NotNil(t, body.CaseInformation)

	sum := sha256.Sum256(data)
	iv := body.DigitalEvidence.IntegrityVerification
	assert.Equal(t, hex.EncodeToString(sum[:]), iv.SHA256Hash)
	assert.Len(t, iv.MD5Hash, 32)
	assert.Len(t, iv.SHA1Hash, 40)
	assert.Equal(t, StatusLocalOnly, iv.VerificationStatus)

	chain := body.DigitalEvidence.ChainOfCustody
	require.Len(t, chain, 1)
	assert.Equal(t, StageEvidenceCollection, chain[0].Stage)

	cm := body.DigitalEvidence.ContentMetadata
	assert.Equal(t, unknownValue, cm.Title)
	assert.Equal(t, []string{}, cm.SubjectTags)
	assert.Equal(t, int64(len(data)), body.DigitalEvidence.FileInformation.FileSizeBytes)
	assert.Nil(t, body.DigitalEvidence.TechnicalDetails.DurationSeconds)
	assert.Equal(t, notAvailableValue, body.DigitalEvidence.SourceVerification.OriginalSourceURL)

	assert.FileExists(t, res.ReportPath)
	assert.FileExists(t, res.SummaryPath)
	assert.Equal(t, "evidence_report_"+res.EvidenceID+"_20240305_143015.json", filepath.Base(res.ReportPath))

	summary, err := os.ReadFile(res.SummaryPath)
	require.NoError(t, err)
	assert.Contains(t, string(summary), "DIGITAL EVIDENCE SUMMARY REPORT")
	assert.Contains(t, string(summary), "File Size: 11 bytes")
	assert.Contains(t, string(summary), "1. DIGITAL_EVIDENCE_COLLECTION")
}

func TestEvidenceWithMetadata(t *testing.T) {
	g, dir := newTestGenerator(t, fixedProbe{seconds: 300})
	writeVideo(t, dir, "moon.mp4", []byte("moon"))
	meta := archivedMetadata()
	meta["uploader"] = "someone@archive.org"
	meta["archive_url"] = "https://archive.org/details/moon-landing"
	require.NoError(t, store.WriteSidecar(dir, "moon.mp4", meta))

	caseInfo := map[string]any{"case_number": "42"}
	res, err := g.Evidence(context.Background(), "https://archive.org/download/moon", "moon.mp4", caseInfo)
	require.NoError(t, err)

	ev := res.Report.Report.DigitalEvidence
	assert.Equal(t, StatusVerified, ev.IntegrityVerification.VerificationStatus)
	require.Len(t, ev.ChainOfCustody, 3)
	assert.Equal(t, StageOriginalPublication, ev.ChainOfCustody[0].Stage)
	assert.Equal(t, "https://www.youtube.com/watch?v=abcdefghijk", ev.ChainOfCustody[0].Location)
	assert.Equal(t, "NASA, JPL", ev.ChainOfCustody[0].Custodian)
	assert.Equal(t, StageArchivalPreservation, ev.ChainOfCustody[1].Stage)
	assert.Equal(t, "https://archive.org/details/moon-landing", ev.ChainOfCustody[1].Location)
	assert.Equal(t, "someone@archive.org", ev.ChainOfCustody[1].Custodian)
	assert.Equal(t, []string{"space", "history"}, ev.ContentMetadata.SubjectTags)
	assert.Equal(t, "abc", ev.SourceVerification.ArchiveMD5)
	require.NotNil(t, ev.TechnicalDetails.DurationSeconds)
	assert.Equal(t, 300.0, *ev.TechnicalDetails.DurationSeconds)
	assert.Equal(t, "2015-01-02T10:00:00", res.Report.Report.LegalCertifications.CollectionTimestamp)
	assert.Equal(t, "42", res.Report.Report.CaseInformation["case_number"])

	var stored EvidenceReport
	require.NoError(t, platform.ReadJSON(res.ReportPath, &stored))
	assert.Equal(t, res.EvidenceID, stored.Report.ReportID)

	reports, err := g.ListEvidenceReports()
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, res.EvidenceID, reports[0].ReportID)
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "0", groupThousands(0))
	assert.Equal(t, "999", groupThousands(999))
	assert.Equal(t, "1,000", groupThousands(1000))
	assert.Equal(t, "12,345,678", groupThousands(12345678))
}
