package au

import (
	"errors"
	"fmt"
)

// Status is a host result code. The zero value is success and is never
// returned as an error.
type Status int32

// Result codes
const (
	NoErr Status = 0

	ErrInvalidProperty          Status = -10879
	ErrInvalidParameter         Status = -10878
	ErrInvalidElement           Status = -10877
	ErrNoConnection             Status = -10876
	ErrFailedInitialization     Status = -10875
	ErrTooManyFramesToProcess   Status = -10874
	ErrInvalidFile              Status = -10871
	ErrFormatNotSupported       Status = -10868
	ErrUninitialized            Status = -10867
	ErrInvalidScope             Status = -10866
	ErrPropertyNotWritable      Status = -10865
	ErrCannotDoInCurrentContext Status = -10863
	ErrInvalidPropertyValue     Status = -10851
	ErrPropertyNotInUse         Status = -10850
	ErrInvalidOfflineRender     Status = -10848

	ErrInvalidInstance  Status = -66749
	ErrParam            Status = -50
	ErrMemFull          Status = -108
	ErrTooManyListeners Status = -42
	ErrUnimplemented    Status = -4
)

func (s Status) Error() string {
	switch s {
	case NoErr:
		return "no error"
	case ErrInvalidProperty:
		return "invalid property"
	case ErrInvalidParameter:
		return "invalid parameter"
	case ErrInvalidElement:
		return "invalid element"
	case ErrNoConnection:
		return "no connection"
	case ErrFailedInitialization:
		return "failed initialization"
	case ErrTooManyFramesToProcess:
		return "too many frames to process"
	case ErrInvalidFile:
		return "invalid file"
	case ErrFormatNotSupported:
		return "format not supported"
	case ErrUninitialized:
		return "uninitialized"
	case ErrInvalidScope:
		return "invalid scope"
	case ErrPropertyNotWritable:
		return "property not writable"
	case ErrCannotDoInCurrentContext:
		return "cannot do in current context"
	case ErrInvalidPropertyValue:
		return "invalid property value"
	case ErrPropertyNotInUse:
		return "property not in use"
	case ErrInvalidOfflineRender:
		return "invalid offline render"
	case ErrInvalidInstance:
		return "invalid instance"
	case ErrParam:
		return "parameter error"
	case ErrMemFull:
		return "out of memory"
	case ErrTooManyListeners:
		return "too many listeners"
	case ErrUnimplemented:
		return "unimplemented"
	default:
		return fmt.Sprintf("status %d", int32(s))
	}
}

// Kind classifies a failure for handling purposes.
type Kind int

const (
	// KindNone is reported for a nil error.
	KindNone Kind = iota
	// KindStructural means the call addressed something that does not exist.
	KindStructural
	// KindValue means the payload was malformed or the target is read-only.
	KindValue
	// KindCapability means the plugin cannot do what was proposed.
	KindCapability
	// KindState means the call is not valid in the current lifecycle state.
	KindState
	// KindResource means a bounded table or allocation was exhausted.
	KindResource
	// KindDownstream means the plugin core reported the failure.
	KindDownstream
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindStructural:
		return "structural"
	case KindValue:
		return "value"
	case KindCapability:
		return "capability"
	case KindState:
		return "state"
	case KindResource:
		return "resource"
	case KindDownstream:
		return "downstream"
	default:
		return "unknown"
	}
}

// Kind reports the classification of s.
func (s Status) Kind() Kind {
	switch s {
	case NoErr:
		return KindNone
	case ErrInvalidScope, ErrInvalidElement, ErrInvalidProperty, ErrInvalidParameter,
		ErrNoConnection, ErrUnimplemented:
		return KindStructural
	case ErrInvalidPropertyValue, ErrPropertyNotWritable, ErrParam, ErrInvalidFile:
		return KindValue
	case ErrFormatNotSupported:
		return KindCapability
	case ErrUninitialized, ErrTooManyFramesToProcess, ErrInvalidInstance,
		ErrCannotDoInCurrentContext, ErrPropertyNotInUse, ErrInvalidOfflineRender:
		return KindState
	case ErrMemFull, ErrTooManyListeners:
		return KindResource
	default:
		return KindDownstream
	}
}

// KindOf classifies an arbitrary error. Errors that do not wrap a Status
// come from the plugin core and are downstream failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var s Status
	if errors.As(err, &s) {
		return s.Kind()
	}
	return KindDownstream
}

// StatusOf maps err to the code reported to the host.
func StatusOf(err error) Status {
	if err == nil {
		return NoErr
	}
	var s Status
	if errors.As(err, &s) {
		return s
	}
	return ErrFailedInitialization
}
