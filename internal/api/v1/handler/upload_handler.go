package handler

import (
	"encoding/json"
	"net/http"

	"vouchy/internal/api/v1/dto"
	"vouchy/internal/middleware"
	"vouchy/internal/service"
	"vouchy/internal/util"

	"github.com/rs/zerolog"
)

// UploadHandler serves public signed uploads for testimonial submissions.
type UploadHandler struct {
	uploadService service.UploadService
	trustedHops   int
	logger        zerolog.Logger
}

// NewUploadHandler creates an UploadHandler. trustedHops is passed to
// middleware.ClientIP to key the per-client rate limit.
func NewUploadHandler(uploadService service.UploadService, trustedHops int, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, trustedHops: trustedHops, logger: logger}
}

// RegisterRoutes mounts the handler at each of the given paths.
func (h *UploadHandler) RegisterRoutes(mux *http.ServeMux, wrap func(string, http.Handler) http.Handler, paths ...string) {
	for _, p := range paths {
		mux.Handle(p, wrap("signed-upload", http.HandlerFunc(h.SignedUpload)))
	}
}

// SignedUpload godoc
// @Summary Create a signed upload URL for a space
// @Description Mints a short-lived signed upload URL and its public URL for an active space.
// @Tags uploads
// @Accept json
// @Produce json
// @Param upload body service.SignedUploadRequest true "Upload target"
// @Success 200 {object} dto.SignedUploadResponseDTO
// @Failure 400 {object} map[string]string "missing or invalid fields"
// @Failure 403 {object} map[string]string "space is not active"
// @Failure 404 {object} map[string]string "space not found"
// @Failure 429 {object} map[string]string "rate limit exceeded"
// @Failure 500 {object} map[string]string "internal error"
// @Router /signed-upload [post]
func (h *UploadHandler) SignedUpload(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req service.SignedUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	upload, err := h.uploadService.CreateSignedUpload(r.Context(), middleware.ClientIP(r, h.trustedHops), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, dto.SignedUploadResponseDTO{
		SignedURL: upload.SignedURL,
		Path:      upload.Path,
		PublicURL: upload.PublicURL,
		ExpiresIn: int(upload.ExpiresIn.Seconds()),
	})
}
