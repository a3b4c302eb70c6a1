package issue

import "errors"

var (
	ErrInvalidReport = errors.New("invalid issue report")
	ErrUnknownDevice = errors.New("unknown device type")
	ErrUnknownIssue  = errors.New("issue type not available for device")
)
