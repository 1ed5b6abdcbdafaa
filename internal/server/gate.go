package server

import "context"

// Gate decides whether a tool call may run. Authentication, quotas and
// upload limits belong to the host embedding the server; it enforces them
// by installing a Gate with WithGate. A non-nil error refuses the call and
// is reported to the client as a tool failure.
type Gate interface {
	Admit(ctx context.Context, tool string) error
}

// GateFunc adapts a function to Gate.
type GateFunc func(ctx context.Context, tool string) error

// Admit implements Gate.
func (f GateFunc) Admit(ctx context.Context, tool string) error {
	return f(ctx, tool)
}

// AllowAll admits every call.
var AllowAll Gate = GateFunc(func(context.Context, string) error { return nil })
