// Package mobilealerts is the HTTP client for the vendor measurement
// service (Mobile Alerts / data199 REST API).
//
// One call covers the full sensor set: the lastmeasurement endpoint
// takes a form-encoded, comma-joined device id list and returns the
// latest reading per device. Uses only net/http; requests are bounded
// by a per-request timeout and the caller's context.
package mobilealerts
