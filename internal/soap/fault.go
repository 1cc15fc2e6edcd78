// Package soap holds the operation dispatch and fault mapping layer: a static
// registry binding (service, port, operation) triples to handlers, and the
// two-tier Client/Server fault taxonomy every call terminates in.
package soap

// FaultCode distinguishes caller-caused failures from system failures.
type FaultCode string

const (
	// FaultCodeClient marks a fault caused by the caller, typically an
	// identifier that does not resolve.
	FaultCodeClient FaultCode = "soap:Client"
	// FaultCodeServer marks anything unplanned.
	FaultCodeServer FaultCode = "soap:Server"
)

// internalErrorReason is the only reason text an unexpected failure surfaces
// with; causes stay in the server log.
const internalErrorReason = "Internal server error"

// Fault is the structured error a call terminates with. It travels as an
// ordinary error value so the dispatch boundary can handle every outcome
// exhaustively instead of recovering thrown objects.
type Fault struct {
	Code   FaultCode
	Reason string
}

func (f *Fault) Error() string {
	return string(f.Code) + ": " + f.Reason
}

// ClientFault reports a caller-supplied reference that did not resolve.
func ClientFault(reason string) *Fault {
	return &Fault{Code: FaultCodeClient, Reason: reason}
}

// ServerFault reports a failure on the service side.
func ServerFault(reason string) *Fault {
	return &Fault{Code: FaultCodeServer, Reason: reason}
}

// Args carries the named arguments of one call. Values arrive as text; an
// empty value is treated the same as an absent one, which is what makes
// partial updates leave missing fields untouched.
type Args map[string]string

// Get returns the named argument or "" when absent.
func (a Args) Get(name string) string {
	return a[name]
}
