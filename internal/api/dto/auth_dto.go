package dto

// SignUpRequest payload for new accounts.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// SignInRequest payload for returning accounts.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyRequest carries the token to validate.
type VerifyRequest struct {
	Token string `json:"token"`
}

// AuthUser is the public user shape in auth responses. The password hash
// never appears here.
type AuthUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// AuthResponse is returned by signup and signin.
type AuthResponse struct {
	User  AuthUser `json:"user"`
	Token string   `json:"token"`
}
