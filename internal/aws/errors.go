package aws

import (
	"errors"

	"github.com/aws/smithy-go"
)

// ErrorCode extracts the service error code from an AWS SDK error, or ""
// for non-API errors. Used to keep log fields greppable across services.
func ErrorCode(err error) string {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return ae.ErrorCode()
	}
	return ""
}
