package domain

import "time"

// BlobInfo describes a single object in a bucket.
type BlobInfo struct {
	Bucket      string    `json:"bucket"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type,omitempty"`
	Updated     time.Time `json:"updated"`
}

// URI returns the gs:// style URI of the blob.
func (b BlobInfo) URI() string {
	return "gs://" + b.Bucket + "/" + b.Name
}

// Asset is an entry of the geospatial asset catalog.
type Asset struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	UpdateTime time.Time `json:"update_time,omitempty"`
}

// SignedURL is a time-limited URL granting access to one object and method.
type SignedURL struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

// InputGroupManifest maps each submitted form key to the object path it was stored at.
type InputGroupManifest map[string]string
