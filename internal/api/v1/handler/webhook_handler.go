package handler

import (
	"errors"
	"io"
	"net/http"

	"vouchy/internal/api/v1/dto"
	"vouchy/internal/service"
	"vouchy/internal/util"

	"github.com/rs/zerolog"
)

const maxWebhookBody = 1 << 20

// signatureHeaders are checked in order for the payment provider's signature.
var signatureHeaders = []string{"webhook-signature", "x-dodo-signature", "x-signature"}

type WebhookHandler struct {
	webhookService service.WebhookService
	logger         zerolog.Logger
}

func NewWebhookHandler(webhookService service.WebhookService, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService, logger: logger}
}

func (h *WebhookHandler) RegisterRoutes(mux *http.ServeMux, wrap func(string, http.Handler) http.Handler, paths ...string) {
	for _, p := range paths {
		mux.Handle(p, wrap("dodo-webhook", http.HandlerFunc(h.DodoWebhook)))
	}
}

// DodoWebhook godoc
// @Summary Receive Dodo Payments webhooks
// @Description Verifies the HMAC-SHA256 signature and applies the resulting plan to the customer's profile.
// @Tags billing
// @Accept json
// @Produce json
// @Success 200 {object} dto.WebhookAckDTO
// @Failure 400 {object} map[string]string "malformed payload or unknown product"
// @Failure 401 {object} map[string]string "missing or invalid signature"
// @Failure 413 {object} map[string]string "payload over 1 MiB"
// @Failure 404 {object} map[string]string "customer not found"
// @Failure 500 {object} map[string]string "internal error"
// @Router /dodo-webhook [post]
func (h *WebhookHandler) DodoWebhook(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			util.WriteError(w, http.StatusRequestEntityTooLarge, "Payload too large")
			return
		}
		util.WriteError(w, http.StatusBadRequest, "Failed to read payload")
		return
	}

	var signature string
	for _, name := range signatureHeaders {
		if signature = r.Header.Get(name); signature != "" {
			break
		}
	}

	res, err := h.webhookService.HandleEvent(r.Context(), payload, signature)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, dto.WebhookAckDTO{
		Received: true,
		Ignored:  res.Bucket == service.BucketIgnored,
		Event:    res.EventType,
		Plan:     string(res.Plan),
	})
}
