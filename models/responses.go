package models

// ListResponse is the envelope for every paginated collection endpoint.
type ListResponse struct {
	Success      bool  `json:"success"`
	Count        int   `json:"count"`
	TotalPages   int   `json:"totalPages"`
	CurrentPage  int   `json:"currentPage"`
	TotalRecords int64 `json:"totalRecords"`
	Data         any   `json:"data"`
}

// MutationResponse is the envelope for create/update/delete endpoints.
type MutationResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope for every failure.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// UploadResponse is returned by POST /api/images/upload.
type UploadResponse struct {
	Success  bool            `json:"success"`
	FileID   string          `json:"fileId"`
	URL      string          `json:"url"`
	Filename string          `json:"filename"`
	Photo    *PhotoReference `json:"photo,omitempty"`
	Message  string          `json:"message"`
}
