package handler

const (
	errInternalServer = "Internal server error"
	errTokenInvalid   = "Token is invalid or expired"
	errBadCredentials = "Invalid email or password"
	errEmailTaken     = "Email is already registered"
	errTagConflict    = "Tag with this name already exists"
	errTagNotFound    = "Tag not found"
	errPostNotFound   = "Post not found"
)
