package leave

import "errors"

var (
	ErrUnknownLeaveCategory = errors.New("unknown leave category")
)
