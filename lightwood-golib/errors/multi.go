package errors

import (
	"fmt"
	"strings"
)

// maxListed bounds how many collected messages Error spells out.
const maxListed = 5

// Errors collects the failures of a batch, typically one per unreadable row. A nil Errors
// means nothing failed, so callers compare against nil rather than checking Len.
type Errors interface {
	error
	// Slice returns a copy of the collected errors in the order they were appended.
	Slice() []error
	// Len is always > 0.
	Len() int
	// Unwrap lets Is match any of the collected errors.
	Unwrap() []error
}

type list []error

func (l list) Slice() []error {
	return append([]error(nil), l...)
}

func (l list) Unwrap() []error {
	return l.Slice()
}

func (l list) Len() int {
	return len(l)
}

// Error lists the first maxListed messages, one per line, and counts the rest.
func (l list) Error() string {
	var b strings.Builder
	for i, err := range l {
		if i == maxListed {
			fmt.Fprintf(&b, "\n(%d more)", len(l)-maxListed)
			break
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(err.Error())
	}
	return b.String()
}

// Append adds err to errs and returns the result. A nil err leaves errs unchanged and an
// Errors err is flattened. errs itself is never modified.
func Append(errs Errors, err error) Errors {
	if err == nil {
		return errs
	}
	var out list
	if l, ok := errs.(list); ok {
		out = l[:len(l):len(l)]
	} else if errs != nil {
		out = list(errs.Slice())
	}
	if multi, ok := err.(Errors); ok && multi != nil {
		return append(out, multi.Slice()...)
	}
	return append(out, err)
}

// Combine returns e and f as a single error, or nil when both are nil.
func Combine(e, f error) error {
	switch {
	case e == nil:
		return f
	case f == nil:
		return e
	}
	var errs Errors
	errs = Append(errs, e)
	return Append(errs, f)
}

// AsError converts a possibly nil Errors into a plain error, so that a nil Errors does not
// become a non-nil error interface value.
func AsError(errs Errors) error {
	if errs == nil {
		return nil
	}
	return errs
}

// Defer combines the error of a deferred call such as Close into *err.
func Defer(err *error, f func() error) {
	*err = Combine(*err, f())
}
