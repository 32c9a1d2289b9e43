package handler

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"lcutils/internal/csvexport"
	"lcutils/internal/service"
)

// CopyObjectRequest is the body of POST /objects/copy.
type CopyObjectRequest struct {
	SourceBucket string `json:"source_bucket" binding:"required"`
	SourceKey    string `json:"source_key" binding:"required"`
	DestBucket   string `json:"dest_bucket" binding:"required"`
	DestKey      string `json:"dest_key" binding:"required"`
	Move         bool   `json:"move"`
}

// BlobHandler handles object storage endpoints.
type BlobHandler struct {
	blobs service.BlobService
}

// NewBlobHandler creates a new BlobHandler.
func NewBlobHandler(blobs service.BlobService) *BlobHandler {
	return &BlobHandler{blobs: blobs}
}

// ListObjects handles GET /api/v1/buckets/:bucket/objects
func (h *BlobHandler) ListObjects(c *gin.Context) {
	names, err := h.blobs.ListNames(c.Request.Context(), c.Param("bucket"), c.Query("prefix"))
	if err != nil {
		HandleError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	RespondOK(c, names)
}

// ExportCSV handles GET /api/v1/buckets/:bucket/export/csv
func (h *BlobHandler) ExportCSV(c *gin.Context) {
	bucket, prefix := c.Param("bucket"), c.Query("prefix")

	blobs, err := h.blobs.List(c.Request.Context(), bucket, prefix)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`,
		csvexport.BuildFilename(bucket, prefix, time.Now())))
	c.Status(http.StatusOK)

	if _, err := c.Writer.Write(csvexport.BOM); err != nil {
		return
	}
	w := csvexport.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}
	if err := w.WriteBlobs(blobs); err != nil {
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		slog.ErrorContext(c.Request.Context(), "blobHandler.ExportCSV: write failed", "error", err)
	}
}

// ListTIFURIs handles GET /api/v1/buckets/:bucket/tif-uris
func (h *BlobHandler) ListTIFURIs(c *gin.Context) {
	byYear, err := h.blobs.ListTIFURIsByYear(c.Request.Context(), c.Param("bucket"), c.Query("prefix"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, byYear)
}

// DeleteObject handles DELETE /api/v1/buckets/:bucket/objects/*key
func (h *BlobHandler) DeleteObject(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "object key is required")
		return
	}

	if err := h.blobs.Delete(c.Request.Context(), c.Param("bucket"), key); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "object deleted"})
}

// CopyObject handles POST /api/v1/objects/copy. With move set the source is
// deleted after the copy.
func (h *BlobHandler) CopyObject(c *gin.Context) {
	var req CopyObjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	op := h.blobs.Copy
	if req.Move {
		op = h.blobs.Move
	}
	if err := op(c.Request.Context(), req.SourceBucket, req.SourceKey, req.DestBucket, req.DestKey); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"bucket": req.DestBucket, "key": req.DestKey})
}

// UploadInputGroup handles POST /api/v1/buckets/:bucket/input-groups. An
// optional prefix query parameter names the destination folder.
func (h *BlobHandler) UploadInputGroup(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "multipart form is required")
		return
	}
	defer func() { _ = form.RemoveAll() }()

	group := service.InputGroup{
		Fields: make(map[string]string, len(form.Value)),
		Files:  make(map[string]*multipart.FileHeader, len(form.File)),
	}
	for key, values := range form.Value {
		if len(values) > 0 {
			group.Fields[key] = values[0]
		}
	}
	for key, headers := range form.File {
		if len(headers) > 0 {
			group.Files[key] = headers[0]
		}
	}

	res, err := h.blobs.UploadInputGroup(c.Request.Context(), c.Param("bucket"), c.Query("prefix"), group)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, res)
}
