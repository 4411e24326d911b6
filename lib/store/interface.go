package store

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the generic interface for interacting with a keep store.
// All write operations return only an error (nil on success),
// while read operations return the requested data along with an error (nil on success).
// Failures are reported as *Error values (see CodeOf and IsCode).
type IStore interface {
	// Init prepares the store for use. It is idempotent and succeeds whether the
	// underlying storage is empty, pre-existing or populated from a prior run.
	Init() (err error)
	// SetItem inserts or overwrites the value for a key.
	// The value must be serializable to JSON.
	SetItem(key string, value any) (err error)
	// GetItem returns the value for a key. The boolean return value indicates whether a value was found.
	// A missing or unreadable (corrupt) entry is not an error: loaded is false and err is nil.
	GetItem(key string) (value any, loaded bool, err error)
	// RemoveItem deletes the value for a key. Removing a missing key is a no-op.
	RemoveItem(key string) (err error)
	// Clear removes every entry. Every removal is attempted, even if some of them fail.
	Clear() (err error)
	// Data returns a mapping from every stored key to its value.
	Data() (data map[string]any, err error)
	// Keys returns all stored keys. The order is implementation defined.
	Keys() (keys []string, err error)
	// Values returns all stored values in the same order as Keys.
	Values() (values []any, err error)
	// Length returns the number of stored keys.
	Length() (n int, err error)
}

// Factory is a function type that creates a new store.
// It is used to abstract the creation of stores from their consumers.
type Factory func() (IStore, error)

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode),
// an error message, the affected path (if any) and the underlying cause (if any).
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
	Path string  // The file or directory the operation failed on.
	Err  error   // The underlying error.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("KeepError (code %s): %s", e.Code, e.Detail())
}

// Detail returns the error message without the code prefix: the message,
// the path and the cause.
func (e *Error) Detail() string {
	msg := e.Msg
	if e.Path != "" {
		msg += fmt.Sprintf(" (path %s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// WrapError creates a new Error with the given code and message for a failed
// operation on path. The cause is available through errors.Unwrap.
func WrapError(code RetCode, msg, path string, cause error) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
		Path: path,
		Err:  cause,
	}
}

// CodeOf returns the return code of the first *Error in err's chain.
// It returns RetCSuccess for a nil error and RetCInternalError for errors
// that are not of type *Error.
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return RetCInternalError
}

// IsCode reports whether err carries the given return code.
func IsCode(err error, code RetCode) bool {
	return err != nil && CodeOf(err) == code
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess       RetCode = iota // 0: Command executed successfully.
	RetCInternalError                // 1: Command failed due to an internal error.
	RetCInitError                    // 2: The storage could not be initialized.
	RetCIOError                      // 3: A read, write, delete or listing failed.
	RetCInvalidKey                   // 4: The key can not be stored.
	RetCInvalidValue                 // 5: The value can not be encoded.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCInitError:
		return "InitError"
	case RetCIOError:
		return "IOError"
	case RetCInvalidKey:
		return "InvalidKey"
	case RetCInvalidValue:
		return "InvalidValue"
	default:
		return "Unknown"
	}
}
