package encoder

import "fmt"

// ValidationError reports a file that does not declare an image media type.
// Nothing has been read when it is returned.
type ValidationError struct {
	Name      string
	MediaType string
}

func (e *ValidationError) Error() string {
	mt := e.MediaType
	if mt == "" {
		mt = "unknown"
	}
	return fmt.Sprintf("%s: not an image (declared type %s)", e.Name, mt)
}

// IOError reports a failure reading the selected file.
type IOError struct {
	Name string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Name, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
