package api

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// PublicUser is the client-facing representation of an account. It carries
// only the public identity fields, never the password hash or internal ID.
type PublicUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// RegisterResponse defines the successful response for the registration endpoint.
type RegisterResponse struct {
	User PublicUser `json:"user"`

	// Access is the JWT access token used for API authorization
	Access string `json:"access"`

	// Refresh is the JWT refresh token used to obtain new access tokens
	Refresh string `json:"refresh"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse defines the successful response for the login endpoint.
type LoginResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	Access string `json:"access"`
}

// CreateTaskRequest defines the payload for creating a task. Ownership is
// never taken from the body; the handler assigns the authenticated caller
// as owner and any owner-like field in the request is ignored.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	IsCompleted bool   `json:"is_completed"`
}

// UpdateTaskRequest defines the payload for partially updating a task.
// Only non-nil fields are applied.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	IsCompleted *bool   `json:"is_completed"`
}
