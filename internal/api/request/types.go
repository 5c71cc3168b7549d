package request

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}
