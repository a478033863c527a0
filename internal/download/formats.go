package download

import "github.com/ytget/mucache/internal/config"

// MergeOutputFormat is the container yt-dlp merges into when ffmpeg is present
const MergeOutputFormat = "mp4"

var (
	reliableFormats = []string{
		"18",
		"worst[ext=mp4][height>=360]",
		"best[height<=480][ext=mp4]",
		"worst[ext=mp4]",
		"best",
	}

	mediumFormats = []string{
		"22",
		"18",
		"best[height<=720][ext=mp4]",
		"best[height<=480][ext=mp4]",
		"worst[ext=mp4]",
		"best",
	}

	highFormats = []string{
		"best[height<=1080][ext=mp4]+best[ext=m4a]/best[height<=1080][ext=mp4]",
		"best[height<=720][ext=mp4]+best[ext=m4a]/best[height<=720][ext=mp4]",
		"best[height<=480][ext=mp4]+best[ext=m4a]/best[height<=480][ext=mp4]",
		"best[ext=mp4]",
		"18",
		"worst[ext=mp4]",
		"best",
	}

	fallbackFormats = []string{"18", "worst", "best"}
)

// FormatChain returns the selectors to try, in order, for a quality preset.
// High quality needs ffmpeg to merge streams and otherwise degrades to medium.
func FormatChain(preset config.QualityPreset, ffmpegAvailable bool) []string {
	var chain []string
	switch preset {
	case config.QualityHigh:
		if ffmpegAvailable {
			chain = highFormats
		} else {
			chain = mediumFormats
		}
	case config.QualityMedium:
		chain = mediumFormats
	default:
		chain = reliableFormats
	}
	return append([]string(nil), chain...)
}

// FallbackFormats is used when a chain comes back empty
func FallbackFormats() []string {
	return append([]string(nil), fallbackFormats...)
}
