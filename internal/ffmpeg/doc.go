// Package ffmpeg probes the local ffmpeg installation. yt-dlp needs ffmpeg to
// merge separate video and audio streams, and evidence reports use ffprobe to
// record media duration.
package ffmpeg
