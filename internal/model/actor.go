package model

// Actor is the identity a request runs as, taken from its session
type Actor struct {
	Nickname string
	IsAdmin  bool
}
