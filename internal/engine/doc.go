// Package engine dispatches outline generation to an isolated worker
// process and correlates replies to callers. It mints a unique ID per
// request, tracks in-flight requests with a per-request timeout, and falls
// back to computing the outline on the caller's goroutine whenever the
// worker cannot be created or used. Callers observe the same contract
// either way.
package engine
