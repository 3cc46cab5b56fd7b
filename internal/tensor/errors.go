package tensor

// ErrorKind classifies every failure the engine reports.
// Kinds and codes are sentinels matched with errors.Is; a code also matches its kind.
type ErrorKind string

func (k ErrorKind) Error() string { return string(k) }

// Error kinds.
const (
	ErrShape     ErrorKind = "shape error"
	ErrAxis      ErrorKind = "axis error"
	ErrDevice    ErrorKind = "device error"
	ErrLinAlg    ErrorKind = "linear algebra error"
	ErrSlice     ErrorKind = "slice error"
	ErrOwnership ErrorKind = "ownership error"
	ErrArgument  ErrorKind = "argument error"
)

// codeError is a specific failure within a kind.
type codeError struct {
	kind ErrorKind
	msg  string
}

func (e *codeError) Error() string { return e.msg }

// Is lets errors.Is(err, ErrShape) succeed for every shape code.
func (e *codeError) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.kind
}

// Kind returns the kind the code belongs to.
func (e *codeError) Kind() ErrorKind { return e.kind }

func newCode(kind ErrorKind, msg string) error {
	return &codeError{kind: kind, msg: msg}
}

// Error codes.
var (
	ErrIncompatible    = newCode(ErrShape, "incompatible shapes")
	ErrSizeMismatch    = newCode(ErrShape, "size mismatch")
	ErrRankMismatch    = newCode(ErrShape, "rank mismatch")
	ErrNotSquare       = newCode(ErrShape, "matrix is not square")
	ErrInvalidShape    = newCode(ErrShape, "invalid shape")
	ErrNonUnitSqueeze  = newCode(ErrShape, "cannot squeeze axis with size != 1")
	ErrAxisOutOfBounds = newCode(ErrAxis, "axis out of bounds")

	ErrInvalidPermutation      = newCode(ErrAxis, "axes are not a permutation")
	ErrMultiDeviceAccelerators = newCode(ErrDevice, "operands live on different accelerators")
	ErrInvalidDevice           = newCode(ErrDevice, "invalid device")
	ErrHostOnly                = newCode(ErrDevice, "scalar access requires host memory")
	ErrReleased                = newCode(ErrDevice, "tensor buffer already released")

	ErrSingular            = newCode(ErrLinAlg, "matrix is singular")
	ErrNotPositiveDefinite = newCode(ErrLinAlg, "matrix is not positive definite")
	ErrNotConverged        = newCode(ErrLinAlg, "did not converge")
	ErrUnsupportedOrder    = newCode(ErrLinAlg, "unsupported norm order")

	ErrZeroStep = newCode(ErrSlice, "slice step cannot be zero")

	ErrInvalidArgument  = newCode(ErrArgument, "invalid argument")
	ErrUnsupportedValue = newCode(ErrArgument, "value cannot be converted to a tensor")
)

// KindOf returns the kind of err, or "" when err was not produced by the engine.
func KindOf(err error) ErrorKind {
	for err != nil {
		switch e := err.(type) {
		case ErrorKind:
			return e
		case *codeError:
			return e.kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			c, ok := err.(interface{ Cause() error })
			if !ok {
				return ""
			}
			err = c.Cause()
			continue
		}
		err = u.Unwrap()
	}
	return ""
}
