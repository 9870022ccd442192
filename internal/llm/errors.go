// Package llm implements the external insight generation backends: an Ollama
// HTTP client (default) and a Gemini provider, sharing prompt rendering and
// response parsing.
package llm

// GenerationError is the failure mode of a generation backend: timeout,
// transport error, non-success status, empty or unparseable output, or retry
// exhaustion. The orchestrator recovers from it locally; it never reaches the
// end user as a hard failure.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func generationErr(message string, err error) *GenerationError {
	return &GenerationError{Message: message, Err: err}
}
