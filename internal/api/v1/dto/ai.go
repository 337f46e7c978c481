package dto

// AIResponseDTO wraps the parsed result of an AI action.
type AIResponseDTO struct {
	Action string `json:"action"`
	Result any    `json:"result"`
}
