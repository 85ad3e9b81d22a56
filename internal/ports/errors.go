package ports

import "errors"

// CodedError is an error carrying a short machine-readable code such as
// FILE_NOT_FOUND, reported in logs and status output.
type CodedError interface {
	error
	ErrorCode() string
}

// ErrorCode returns the code of the first CodedError in err's chain, or "".
func ErrorCode(err error) string {
	var ce CodedError
	if errors.As(err, &ce) {
		return ce.ErrorCode()
	}
	return ""
}
