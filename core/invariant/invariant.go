// Package invariant provides contract assertions.
//
// Violations are programming errors, not user errors, so every check panics
// with a *Violation rather than returning an error.
package invariant

import (
	"fmt"
	"reflect"
)

// Violation is the panic value raised by a failed check.
type Violation struct {
	// Kind is one of PRECONDITION, POSTCONDITION or INVARIANT.
	Kind    string
	Message string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s VIOLATION: %s", v.Kind, v.Message)
}

// Precondition checks an input contract at function entry.
func Precondition(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("PRECONDITION", format, args...)
	}
}

// Postcondition checks an output contract before returning.
func Postcondition(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("POSTCONDITION", format, args...)
	}
}

// Invariant checks internal consistency during execution.
func Invariant(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("INVARIANT", format, args...)
	}
}

// NotNil panics if value is nil, including typed nils like (*T)(nil).
func NotNil(value interface{}, name string) {
	if isNil(value) {
		fail("PRECONDITION", "%s must not be nil", name)
	}
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}

func fail(kind, format string, args ...interface{}) {
	panic(&Violation{Kind: kind, Message: fmt.Sprintf(format, args...)})
}
