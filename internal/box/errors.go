package box

import "fmt"

// BoxError is the box package's Kind/Message sentinel error.
type BoxError struct {
	Kind    string
	Message string
}

func (e BoxError) Error() string {
	return fmt.Sprintf("box error (%v): %v", e.Kind, e.Message)
}

func required(msg string) error {
	return BoxError{Kind: "E_BOX_REQUIRED", Message: msg}
}

func violation(msg string) error {
	return BoxError{Kind: "E_BOX_VIOLATION", Message: msg}
}
