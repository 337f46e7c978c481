package handler

import (
	"encoding/json"
	"net/http"

	"vouchy/internal/api/v1/dto"
	"vouchy/internal/middleware"
	"vouchy/internal/service"
	"vouchy/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// R2Handler serves presigned uploads to R2 for signed-in users.
type R2Handler struct {
	r2Service service.R2Service
	validate  *validator.Validate
	logger    zerolog.Logger
}

func NewR2Handler(r2Service service.R2Service, validate *validator.Validate, logger zerolog.Logger) *R2Handler {
	return &R2Handler{r2Service: r2Service, validate: validate, logger: logger}
}

func (h *R2Handler) RegisterRoutes(mux *http.ServeMux, wrap func(string, http.Handler) http.Handler, authMw func(http.Handler) http.Handler, paths ...string) {
	for _, p := range paths {
		mux.Handle(p, wrap("r2-upload", authMw(http.HandlerFunc(h.R2Upload))))
	}
}

// R2Upload godoc
// @Summary Create a presigned R2 upload URL
// @Description Returns a presigned PUT URL for an allow-listed folder.
// @Tags uploads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param upload body service.R2UploadRequest true "Upload target"
// @Success 200 {object} dto.R2UploadResponseDTO
// @Failure 400 {object} map[string]string "invalid folder or missing fields"
// @Failure 401 {object} map[string]string "unauthorized"
// @Failure 500 {object} map[string]string "R2 not configured"
// @Router /r2-upload [post]
func (h *R2Handler) R2Upload(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	userID := middleware.UserID(r.Context())
	if userID == "" {
		util.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req service.R2UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		util.WriteError(w, http.StatusBadRequest, "Missing required fields: fileName, contentType, folder")
		return
	}

	upload, err := h.r2Service.CreatePresignedUpload(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, dto.R2UploadResponseDTO{
		UploadURL: upload.UploadURL,
		Key:       upload.Key,
		PublicURL: upload.PublicURL,
		ExpiresIn: int(upload.ExpiresIn.Seconds()),
	})
}
