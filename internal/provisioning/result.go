package provisioning

import (
	"time"

	"vmforge/internal/resource"
)

// Status is the terminal outcome of a provisioning request
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Mode names the construction path used for a request
type Mode string

const (
	ModeDirect    Mode = "direct"
	ModeBuilder   Mode = "builder"
	ModePrototype Mode = "prototype"
)

// Result is the immutable outcome of one provisioning request
type Result struct {
	status    Status
	vmID      string
	provider  string
	timestamp time.Time
	err       error
}

func newSuccess(vmID, provider string, ts time.Time) *Result {
	return &Result{status: StatusSuccess, vmID: vmID, provider: provider, timestamp: ts}
}

func newFailure(err error, provider string, ts time.Time) *Result {
	return &Result{status: StatusError, provider: provider, timestamp: ts, err: err}
}

func (r *Result) Status() Status       { return r.status }
func (r *Result) Succeeded() bool      { return r.status == StatusSuccess }
func (r *Result) VMID() string         { return r.vmID }
func (r *Result) Provider() string     { return r.provider }
func (r *Result) Timestamp() time.Time { return r.timestamp }

// Err returns the failure cause for errors.Is checks, nil on success
func (r *Result) Err() error { return r.err }

// ErrorMessage returns the human-readable failure, "" on success
func (r *Result) ErrorMessage() string {
	if r.err == nil {
		return ""
	}
	return r.err.Error()
}

// Record renders the result for transport. vmId and errorMessage are null
// when absent.
func (r *Result) Record() resource.Record {
	rec := resource.Record{
		"status":       string(r.status),
		"vmId":         nil,
		"provider":     r.provider,
		"timestamp":    r.timestamp.UTC().Format(time.RFC3339Nano),
		"errorMessage": nil,
	}
	if r.vmID != "" {
		rec["vmId"] = r.vmID
	}
	if r.err != nil {
		rec["errorMessage"] = r.err.Error()
	}
	return rec
}
