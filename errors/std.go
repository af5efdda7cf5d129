package errors

import stderrors "errors"

// Is, As and Join forward to the standard library so callers importing
// this package do not also need the standard errors package.

func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

func Join(errs ...error) error { return stderrors.Join(errs...) }

// Sentinel returns a plain error, for package-level sentinels that are
// compared by identity rather than kind.
func Sentinel(text string) error { return stderrors.New(text) }
