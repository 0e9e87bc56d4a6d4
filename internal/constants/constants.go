package constants

import "time"

// Context and session keys
const (
	ContextKeyUserID  = "user_id"
	ContextKeyRequest = "request_id"
	SessionCookieName = "timetrack_session"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Validation
const (
	MinPasswordLength = 8
	MaxNameLength     = 255
	MaxUsernameLength = 150
)

// Limits
const (
	MaxAISuggestedTasks = 20
	DefaultMailTimeout  = 10 * time.Second
	DefaultTokenTTL     = 24 * time.Hour
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"
