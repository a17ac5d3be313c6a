package models

import "time"

// DownloadsPathPrefix is the URL path under which artifacts are served
const DownloadsPathPrefix = "/downloads/"

// Artifact describes a media file held in the artifact store
type Artifact struct {
	Key         string    `json:"key"`      // <job-id>/<filename>
	Filename    string    `json:"filename"` // Name presented to clients
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Title       string    `json:"title,omitempty"`
	Duration    string    `json:"duration,omitempty"` // seconds as reported by ffprobe
	Format      Format    `json:"format"`
	SourceURL   string    `json:"source_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// DownloadPath returns the URL path clients use to fetch the artifact
func (a *Artifact) DownloadPath() string {
	return DownloadsPathPrefix + a.Key
}
