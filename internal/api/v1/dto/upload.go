package dto

// SignedUploadResponseDTO is returned by POST /signed-upload
type SignedUploadResponseDTO struct {
	SignedURL string `json:"signedUrl"`
	Path      string `json:"path"`
	PublicURL string `json:"publicUrl"`
	ExpiresIn int    `json:"expiresIn"`
}

// R2UploadResponseDTO is returned by POST /r2-upload
type R2UploadResponseDTO struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	PublicURL string `json:"publicUrl,omitempty"`
	ExpiresIn int    `json:"expiresIn"`
}
