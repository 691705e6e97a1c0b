package worker

// ============================================================================
// Log Messages - Worker Pool
// ============================================================================

// LogMsgWorkerJobFailed is logged when a worker fails to process a job
const LogMsgWorkerJobFailed = "Worker job failed"

// ============================================================================
// Log Messages - Trade Expiry Worker
// ============================================================================

// Log messages for trade expiry operations
const (
	LogMsgSchedulingTradeExpiry = "Scheduling trade expiry"
	LogMsgRunningExpirySweep    = "Running trade expiry sweep"
	LogMsgExpirySweepFailed     = "Trade expiry sweep failed"
	LogMsgBadProposedPayload    = "Ignoring malformed trade.proposed payload"
)
