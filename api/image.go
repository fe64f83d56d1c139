package api

import "time"

// Image is the wire representation of an image record
type Image struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	UserID    string    `json:"user_id"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedAt time.Time `json:"created_at"`
}

// EditImageRequest carries the edited image payload for PUT /api/images/:id
type EditImageRequest struct {
	EditedImage string `json:"edited_image" form:"edited_image"`
}

// FieldError is a single field-level validation message
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the error body returned on any failed request.
// Fields is only populated for validation failures.
type ErrorResponse struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields,omitempty"`
}

// User is the authenticated identity returned by GET /api/user
type User struct {
	ID string `json:"id"`
}
