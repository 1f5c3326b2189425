package screening

import "fmt"

// InvalidParameterError reports a screening request parameter outside its
// allowed range. Validation happens before any scoring; a request that fails
// it produces no partial results.
type InvalidParameterError struct {
	Param  string
	Value  int
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("screening: invalid %s %d: %s", e.Param, e.Value, e.Reason)
}
