package errdef

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure categories surfaced by the core.
// The CLI maps kinds to user-facing messages and exit codes.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNotFound
	KindAlreadyExists
	KindStartFailed
	KindStopFailed
	KindConfig
	KindProcess
	KindLog
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAlreadyExists:
		return "already exists"
	case KindStartFailed:
		return "start failed"
	case KindStopFailed:
		return "stop failed"
	case KindConfig:
		return "configuration error"
	case KindProcess:
		return "process error"
	case KindLog:
		return "log error"
	default:
		return "error"
	}
}

// Error is a tagged error with an optional server name and wrapped cause.
type Error struct {
	Kind Kind
	Name string // server name when the failure concerns a specific record
	Msg  string // optional detail when there is no underlying cause
	Err  error  // underlying cause, if any
}

func (e *Error) Error() string {
	switch {
	case e.Name != "" && e.Err != nil:
		return fmt.Sprintf("server %q: %s: %v", e.Name, e.Kind, e.Err)
	case e.Name != "" && e.Msg != "":
		return fmt.Sprintf("server %q: %s: %s", e.Name, e.Kind, e.Msg)
	case e.Name != "":
		return fmt.Sprintf("server %q: %s", e.Name, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same kind, so callers can use
// errors.Is(err, errdef.ErrNotFound) without caring about name or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Name == "" || t.Name == e.Name)
}

// Sentinels for errors.Is matching by kind.
var (
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists}
	ErrStartFailed   = &Error{Kind: KindStartFailed}
	ErrStopFailed    = &Error{Kind: KindStopFailed}
	ErrConfig        = &Error{Kind: KindConfig}
	ErrProcess       = &Error{Kind: KindProcess}
	ErrLog           = &Error{Kind: KindLog}
)

func NotFound(name string) error      { return &Error{Kind: KindNotFound, Name: name} }
func AlreadyExists(name string) error { return &Error{Kind: KindAlreadyExists, Name: name} }

func StartFailed(name string, cause error) error {
	return &Error{Kind: KindStartFailed, Name: name, Err: cause}
}

func StartFailedf(name, format string, args ...any) error {
	return &Error{Kind: KindStartFailed, Name: name, Msg: fmt.Sprintf(format, args...)}
}

func StopFailed(name string, cause error) error {
	return &Error{Kind: KindStopFailed, Name: name, Err: cause}
}

func StopFailedf(name, format string, args ...any) error {
	return &Error{Kind: KindStopFailed, Name: name, Msg: fmt.Sprintf(format, args...)}
}

func Config(cause error) error { return &Error{Kind: KindConfig, Err: cause} }

func Configf(format string, args ...any) error {
	return &Error{Kind: KindConfig, Msg: fmt.Sprintf(format, args...)}
}

func Process(name string, cause error) error {
	return &Error{Kind: KindProcess, Name: name, Err: cause}
}

func Processf(name, format string, args ...any) error {
	return &Error{Kind: KindProcess, Name: name, Msg: fmt.Sprintf(format, args...)}
}

func Log(name string, cause error) error { return &Error{Kind: KindLog, Name: name, Err: cause} }

// KindOf extracts the taxonomy kind from err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
