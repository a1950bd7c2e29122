package httpclient

import "github.com/aleister1102/adstrace/internal/common"

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	return common.WrapError(err, message)
}
