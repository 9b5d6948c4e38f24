package creation

import "errors"

// Kind tells an upload failure apart from a persist failure, since the
// recovery paths differ: a failed upload means redoing the image pick,
// a failed write can be retried as-is.
type Kind int

const (
	KindUnknown Kind = iota
	KindUpload
	KindPersist
)

func (k Kind) String() string {
	switch k {
	case KindUpload:
		return "upload"
	case KindPersist:
		return "persist"
	default:
		return "unknown"
	}
}

type FlowError struct {
	Kind Kind
	Err  error
}

func (e *FlowError) Error() string {
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from any error returned by Submit.
func KindOf(err error) Kind {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}
