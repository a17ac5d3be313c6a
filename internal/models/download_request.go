package models

// FetchRequest represents a request to download media and deliver it in a given format
type FetchRequest struct {
	URL    string // Media page URL handed to the download tool
	Format Format // Requested output format
}

// CacheKey identifies the artifact produced for this request independently of the job
func (r FetchRequest) CacheKey() string {
	return "fetch:" + r.Format.String() + ":" + r.URL
}
