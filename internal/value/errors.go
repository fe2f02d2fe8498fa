package value

import "fmt"

// ValueError is the value package's Kind/Message sentinel error.
type ValueError struct {
	Kind    string
	Message string
}

func (e ValueError) Error() string {
	return fmt.Sprintf("value error (%v): %v", e.Kind, e.Message)
}

func typeError(msg string) error {
	return ValueError{Kind: "E_TYPE", Message: msg}
}
