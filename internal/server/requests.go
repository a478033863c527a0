package server

import (
	"github.com/go-playground/validator/v10"

	"github.com/ytget/mucache/internal/config"
)

type (
	// QualityRequest is the body of POST /quality_settings
	QualityRequest struct {
		QualityPreference string `json:"quality_preference" validate:"required,qualityPreset"`
	}

	// CitationRequest is the body of POST /citations
	CitationRequest struct {
		VideoURL      string            `json:"video_url" validate:"required"`
		VideoFilename string            `json:"video_filename" validate:"required"`
		CustomInfo    map[string]string `json:"custom_info"`
	}

	// EvidenceRequest is the body of POST /evidence_reports
	EvidenceRequest struct {
		VideoURL      string         `json:"video_url" validate:"required"`
		VideoFilename string         `json:"video_filename" validate:"required"`
		CaseInfo      map[string]any `json:"case_info"`
	}

	// DownloadResponse is returned by GET /download
	DownloadResponse struct {
		Filename  string `json:"filename"`
		FromCache bool   `json:"fromCache"`
		Success   bool   `json:"success"`
	}

	// DownloadFailure is returned by GET /download when resolving fails
	DownloadFailure struct {
		Error      string `json:"error"`
		Details    string `json:"details"`
		Suggestion string `json:"suggestion"`
		Success    bool   `json:"success"`
	}

	// FileStatsResponse is returned by GET /filestats
	FileStatsResponse struct {
		Size             int64  `json:"size"`
		Created          string `json:"created"`
		Modified         string `json:"modified"`
		EnhancedMetadata any    `json:"enhanced_metadata"`
	}

	// QualitySettingsResponse is returned by GET /quality_settings
	QualitySettingsResponse struct {
		QualityPreference string            `json:"quality_preference"`
		FFmpegAvailable   bool              `json:"ffmpeg_available"`
		Options           map[string]string `json:"options"`
	}
)

var downloadFailed = DownloadFailure{
	Error:      "Download failed",
	Details:    "Could not download video. Check logs for details.",
	Suggestion: "Try a different quality setting or check if the URL is valid",
	Success:    false,
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("qualityPreset", func(fl validator.FieldLevel) bool {
		return config.QualityPreset(fl.Field().String()).Valid()
	})
	return v
}
