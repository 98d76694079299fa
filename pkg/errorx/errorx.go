// Package errorx provides errors that carry a registered numeric code.
//
// A Coder describes a code: its HTTP status, a user-facing message and an
// optional reference. Codes are registered once at init time by the package
// that owns them; WithCode and WrapC attach a code to an error chain and
// ParseCoder recovers it anywhere up the stack.
package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// Coder describes an error code.
type Coder interface {
	// Code returns the numeric code.
	Code() int
	// HTTPStatus returns the HTTP status the code maps to.
	HTTPStatus() int
	// String returns the user-facing message.
	String() string
	// Reference returns a documentation reference, may be empty.
	Reference() string
}

// UnknownCode is used for errors without a registered code.
const UnknownCode = 1

type defaultCoder struct {
	code int
	http int
	msg  string
}

func (c defaultCoder) Code() int         { return c.code }
func (c defaultCoder) HTTPStatus() int   { return c.http }
func (c defaultCoder) String() string    { return c.msg }
func (c defaultCoder) Reference() string { return "" }

var (
	unknownCoder = defaultCoder{code: UnknownCode, http: http.StatusInternalServerError, msg: "An internal server error occurred"}

	codeMu sync.RWMutex
	codes  = map[int]Coder{UnknownCode: unknownCoder}
)

// Register registers a coder, replacing any coder with the same code.
func Register(c Coder) {
	if c.Code() == UnknownCode {
		panic("errorx: code 1 is reserved")
	}
	codeMu.Lock()
	defer codeMu.Unlock()
	codes[c.Code()] = c
}

// MustRegister registers a coder and panics if the code is already taken.
func MustRegister(c Coder) {
	codeMu.Lock()
	defer codeMu.Unlock()
	if _, ok := codes[c.Code()]; ok {
		panic(fmt.Sprintf("errorx: code %d already registered", c.Code()))
	}
	codes[c.Code()] = c
}

// NewCoder builds a Coder from its parts.
func NewCoder(code, httpStatus int, msg string) Coder {
	return defaultCoder{code: code, http: httpStatus, msg: msg}
}

type withCode struct {
	msg   string
	code  int
	cause error
}

// WithCode returns a new coded error with a formatted message.
func WithCode(code int, format string, args ...any) error {
	return &withCode{msg: fmt.Sprintf(format, args...), code: code}
}

// WrapC annotates err with a code and a formatted message. It returns nil if err is nil.
func WrapC(err error, code int, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &withCode{msg: fmt.Sprintf(format, args...), code: code, cause: err}
}

func (w *withCode) Error() string {
	if w.cause == nil {
		return w.msg
	}
	return w.msg + ": " + w.cause.Error()
}

func (w *withCode) Unwrap() error { return w.cause }

// Code returns the attached code.
func (w *withCode) Code() int { return w.code }

// ParseCoder returns the Coder of the outermost coded error in err's chain.
// It returns nil for a nil error and the unknown coder for uncoded errors.
func ParseCoder(err error) Coder {
	if err == nil {
		return nil
	}
	var wc *withCode
	if errors.As(err, &wc) {
		codeMu.RLock()
		defer codeMu.RUnlock()
		if c, ok := codes[wc.code]; ok {
			return c
		}
	}
	return unknownCoder
}

// IsCode reports whether any error in err's chain carries code.
func IsCode(err error, code int) bool {
	for err != nil {
		var wc *withCode
		if !errors.As(err, &wc) {
			return false
		}
		if wc.code == code {
			return true
		}
		err = wc.cause
	}
	return false
}
