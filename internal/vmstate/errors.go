package vmstate

import "fmt"

// ContractViolation is the panic value raised when a Description does not
// match the instance it is walked over.
type ContractViolation struct {
	Desc   string
	Field  string
	Reason string
}

func (e *ContractViolation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("vmstate: %s: %s", e.Desc, e.Reason)
	}
	return fmt.Sprintf("vmstate: %s.%s: %s", e.Desc, e.Field, e.Reason)
}

func violate(desc, field, format string, args ...any) {
	panic(&ContractViolation{Desc: desc, Field: field, Reason: fmt.Sprintf(format, args...)})
}
