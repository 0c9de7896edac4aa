package types

// Client -> Server (GET /ws?code=<draft code>)
// Spin:
//   {} // picks a candidate; the wheel starts on the next snapshot
//
// SpinComplete:
//   {} // only needed when the server has no spin duration configured
//
// Confirm:
//   {} // drafts the pending candidate onto the active team
//
// Reset:
//   {} // rebuilds the draft from the loaded roster

// Server -> Client
// StateSnapshot: see snapshot.go
//
// Error:
//   error: string // e.g. "no selection pending", "rate limited"
