package source

// Op constants name the failing source operation for error context.
const (
	OpPing    = "ping"
	OpScan    = "scan"
	OpGet     = "get"
	OpReadDir = "readdir"
	OpStat    = "stat"
	OpRead    = "read"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
