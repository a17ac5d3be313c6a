// Tests for format.go: ParseFormat(), selectors, muxers and content types.
package models

import "testing"

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		def     Format
		want    Format
		wantErr bool
	}{
		{"empty uses default", "", FormatMP3, FormatMP3, false},
		{"whitespace uses default", "  ", FormatOriginal, FormatOriginal, false},
		{"mp3", "mp3", FormatOriginal, FormatMP3, false},
		{"uppercase MP4", "MP4", FormatOriginal, FormatMP4, false},
		{"original", "original", FormatMP3, FormatOriginal, false},
		{"mkv", "mkv", FormatOriginal, FormatMKV, false},
		{"unsupported avi", "avi", FormatOriginal, "", true},
		{"garbage", "../etc", FormatOriginal, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input, tt.def)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormat_Selector(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatMP3, "bestaudio/best"},
		{FormatFLAC, "bestaudio/best"},
		{FormatMP4, "bv*[ext=mp4]+ba[ext=m4a]/b[ext=mp4]/bv*+ba/b"},
		{FormatWebM, "bv*+ba/b"},
		{FormatOriginal, "bv*+ba/b"},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			if got := tt.format.Selector(); got != tt.want {
				t.Errorf("Selector() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat_Properties(t *testing.T) {
	if FormatOriginal.Extension() != "" {
		t.Errorf("Expected no extension for original, got %q", FormatOriginal.Extension())
	}
	if FormatM4A.Extension() != "m4a" {
		t.Errorf("Expected m4a extension, got %q", FormatM4A.Extension())
	}
	if FormatM4A.Muxer() != "ipod" {
		t.Errorf("Expected ipod muxer for m4a, got %q", FormatM4A.Muxer())
	}
	if FormatMKV.Muxer() != "matroska" {
		t.Errorf("Expected matroska muxer for mkv, got %q", FormatMKV.Muxer())
	}
	if !FormatOpus.IsAudio() || FormatMP4.IsAudio() || FormatOriginal.IsAudio() {
		t.Error("IsAudio returned unexpected values")
	}
	if FormatMP3.ContentType() != "audio/mpeg" {
		t.Errorf("Expected audio/mpeg, got %q", FormatMP3.ContentType())
	}
	if FormatOriginal.ContentType() != "application/octet-stream" {
		t.Errorf("Expected octet-stream for original, got %q", FormatOriginal.ContentType())
	}

	for _, f := range SupportedFormats() {
		if !f.Valid() {
			t.Errorf("Supported format %q reported invalid", f)
		}
	}
	if Format("avi").Valid() {
		t.Error("Expected avi to be invalid")
	}
}

func TestContentTypeForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"song-abc.mp3", "audio/mpeg"},
		{"clip-abc.WEBM", "video/webm"},
		{"movie.mkv", "video/x-matroska"},
		{"noext", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := ContentTypeForFile(tt.filename); got != tt.want {
				t.Errorf("ContentTypeForFile(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}
