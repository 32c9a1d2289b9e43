package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"lcutils/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"URI",
	"Bucket",
	"Name",
	"Size",
	"Content Type",
	"Updated",
}

// Writer wraps csv.Writer for exporting blob listings as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteBlobs converts a batch of blobs to CSV rows and writes them.
func (w *Writer) WriteBlobs(blobs []domain.BlobInfo) error {
	for i := range blobs {
		if err := w.csv.Write(blobToRow(&blobs[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func blobToRow(b *domain.BlobInfo) []string {
	row := make([]string, len(columns))
	row[0] = b.URI()
	row[1] = b.Bucket
	row[2] = b.Name
	row[3] = strconv.FormatInt(b.Size, 10)
	row[4] = b.ContentType
	if !b.Updated.IsZero() {
		row[5] = b.Updated.UTC().Format(time.RFC3339)
	}
	return row
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for a listing of bucket/prefix.
// Format: {bucket}_{prefix}_{YYYY-MM-DD}.csv
func BuildFilename(bucket, prefix string, now time.Time) string {
	sanitized := SanitizeFilename(bucket + "_" + prefix)
	return fmt.Sprintf("%s_%s.csv", sanitized, now.Format("2006-01-02"))
}
