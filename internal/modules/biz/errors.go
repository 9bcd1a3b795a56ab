package biz

import "errors"

var (
	ErrTitleRequired  = errors.New("business data with title is required")
	ErrUserIDRequired = errors.New("userId is required")
	ErrNotFound       = errors.New("business not found")
	ErrNoValidRows    = errors.New("no valid businesses found in CSV file")
)
