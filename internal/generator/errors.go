package generator

import "fmt"

// BackendError reports a failed call to a generation backend.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown in place of an answer when errors are masked.
func (e *BackendError) UserMessage() string {
	if e.Backend == BackendHosted {
		return fmt.Sprintf("Error using OpenAI: %s. Falling back to local model.", e.Err)
	}
	return fmt.Sprintf("Error with local model: %s", e.Err)
}
