package models

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// Format is the output format requested by a caller
type Format string

const (
	// FormatOriginal keeps whatever container the download tool produced
	FormatOriginal Format = "original"

	FormatMP3  Format = "mp3"
	FormatM4A  Format = "m4a"
	FormatOpus Format = "opus"
	FormatWAV  Format = "wav"
	FormatFLAC Format = "flac"

	FormatMP4  Format = "mp4"
	FormatWebM Format = "webm"
	FormatMKV  Format = "mkv"
)

const (
	audioSelector = "bestaudio/best"
	videoSelector = "bv*+ba/b"
	mp4Selector   = "bv*[ext=mp4]+ba[ext=m4a]/b[ext=mp4]/bv*+ba/b"
)

type formatInfo struct {
	audio       bool
	muxer       string // ffmpeg muxer name
	contentType string
}

var formats = map[Format]formatInfo{
	FormatMP3:  {audio: true, muxer: "mp3", contentType: "audio/mpeg"},
	FormatM4A:  {audio: true, muxer: "ipod", contentType: "audio/mp4"},
	FormatOpus: {audio: true, muxer: "opus", contentType: "audio/ogg"},
	FormatWAV:  {audio: true, muxer: "wav", contentType: "audio/wav"},
	FormatFLAC: {audio: true, muxer: "flac", contentType: "audio/flac"},
	FormatMP4:  {muxer: "mp4", contentType: "video/mp4"},
	FormatWebM: {muxer: "webm", contentType: "video/webm"},
	FormatMKV:  {muxer: "matroska", contentType: "video/x-matroska"},
}

// SupportedFormats lists every accepted format name, original first
func SupportedFormats() []Format {
	return []Format{
		FormatOriginal,
		FormatMP3, FormatM4A, FormatOpus, FormatWAV, FormatFLAC,
		FormatMP4, FormatWebM, FormatMKV,
	}
}

// ParseFormat converts a format string to a Format. An empty string yields def.
func ParseFormat(s string, def Format) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return def, nil
	}
	f := Format(s)
	if !f.Valid() {
		return "", fmt.Errorf("unsupported format %q", s)
	}
	return f, nil
}

// String returns the string representation of the format
func (f Format) String() string {
	return string(f)
}

// Valid reports whether f is one of the supported formats
func (f Format) Valid() bool {
	if f == FormatOriginal {
		return true
	}
	_, ok := formats[f]
	return ok
}

// IsAudio reports whether f is an audio-only format
func (f Format) IsAudio() bool {
	return formats[f].audio
}

// Extension returns the file extension (without dot) for f, or "" for FormatOriginal
func (f Format) Extension() string {
	if f == FormatOriginal {
		return ""
	}
	return string(f)
}

// Muxer returns the ffmpeg muxer used to write f
func (f Format) Muxer() string {
	return formats[f].muxer
}

// Selector returns the yt-dlp format selector used to download media for f
func (f Format) Selector() string {
	switch {
	case f.IsAudio():
		return audioSelector
	case f == FormatMP4:
		return mp4Selector
	default:
		return videoSelector
	}
}

// ContentType returns the MIME type of files in format f
func (f Format) ContentType() string {
	if ct := formats[f].contentType; ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// ContentTypeForFile derives the MIME type from a filename extension
func ContentTypeForFile(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if info, ok := formats[Format(ext)]; ok {
		return info.contentType
	}
	if ct := mime.TypeByExtension("." + ext); ext != "" && ct != "" {
		return ct
	}
	return "application/octet-stream"
}
