package typeroute

import "errors"

// SelfValidator is implemented by request types that validate themselves
// after binding. Returned field errors join the same 422 wire shape as
// binder failures.
type SelfValidator interface {
	Validate() ValidationErrors
}

func asSchemaError(err error, target **SchemaError) bool {
	return errors.As(err, target)
}
