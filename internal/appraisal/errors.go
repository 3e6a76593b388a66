package appraisal

import "fmt"

// ErrorKind classifies an AppraisalError.
type ErrorKind string

const (
	KindConfig    ErrorKind = "config"    // client cannot be built (missing key)
	KindInput     ErrorKind = "input"     // image is not a usable data URI
	KindTransport ErrorKind = "transport" // endpoint unreachable, timeout, SDK failure
	KindStatus    ErrorKind = "status"    // non-2xx response
	KindDecode    ErrorKind = "decode"    // response is not JSON
	KindSchema    ErrorKind = "schema"    // JSON does not match the result schema
	KindCommit    ErrorKind = "commit"    // result could not be added to the portfolio
)

// AppraisalError is the single failure type of the appraisal client.
// Callers never see a partial Result alongside it.
type AppraisalError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *AppraisalError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("appraisal %s error (HTTP %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("appraisal %s error: %v", e.Kind, e.Err)
}

func (e *AppraisalError) Unwrap() error { return e.Err }

func newError(kind ErrorKind, err error) *AppraisalError {
	return &AppraisalError{Kind: kind, Err: err}
}
