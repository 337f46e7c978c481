package dto

// WebhookAckDTO acknowledges a processed payment webhook.
type WebhookAckDTO struct {
	Received bool   `json:"received"`
	Ignored  bool   `json:"ignored,omitempty"`
	Event    string `json:"event,omitempty"`
	Plan     string `json:"plan,omitempty"`
}
