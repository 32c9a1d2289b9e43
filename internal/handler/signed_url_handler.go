package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lcutils/internal/port"
)

// SignedURLRequest is the body of POST /signed-urls.
type SignedURLRequest struct {
	Bucket            string            `json:"bucket" binding:"required"`
	Object            string            `json:"object" binding:"required"`
	Method            string            `json:"method"`
	ExpirationSeconds int64             `json:"expiration_seconds"`
	Subresource       string            `json:"subresource"`
	QueryParameters   map[string]string `json:"query_parameters"`
	Headers           map[string]string `json:"headers"`
}

// SignedURLHandler handles signed URL endpoints.
type SignedURLHandler struct {
	signer port.URLSigner
}

// NewSignedURLHandler creates a new SignedURLHandler.
func NewSignedURLHandler(signer port.URLSigner) *SignedURLHandler {
	return &SignedURLHandler{signer: signer}
}

// Create handles POST /api/v1/signed-urls
func (h *SignedURLHandler) Create(c *gin.Context) {
	var req SignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	out, err := h.signer.SignedURL(c.Request.Context(), port.SignedURLInput{
		Bucket:            req.Bucket,
		Key:               req.Object,
		Method:            req.Method,
		ExpirationSeconds: req.ExpirationSeconds,
		Subresource:       req.Subresource,
		QueryParameters:   req.QueryParameters,
		Headers:           req.Headers,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, out)
}
