package domain

// RequestContext carries the session and authenticated user when available.
type RequestContext struct {
	SessionID string `json:"sessionId"`
	UserID    int64  `json:"userId,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Authenticated reports whether a bearer token is attached to the session.
func (r RequestContext) Authenticated() bool {
	return r.Username != "" || r.UserID != 0
}
