package crawler

import "fmt"

// FetchError is returned once every attempt for a URL has failed. Err holds
// the cause of the last attempt (network error, timeout or bad status).
type FetchError struct {
	URL        string
	Attempts   int
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError indica que o documento chegou mas faltam campos
// obrigatórios. Quem chama trata como falha de fetch.
type ExtractionError struct {
	Document string
	Reason   string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %s", e.Document, e.Reason)
}
