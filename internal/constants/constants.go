package constants

import "time"

// ScrollBatchWindow coalesces rapid message arrivals into one scroll
// decision. Several messages landing inside the window trigger at most one
// programmatic scroll.
const ScrollBatchWindow = 100 * time.Millisecond

// ScrollBottomThreshold is how close to the end of the transcript (in
// viewport lines) the reader can be and still count as "at bottom".
const ScrollBottomThreshold = 2

// ProcessingTickInterval drives the elapsed-seconds counter on the
// synthetic loading entry while the assistant is working.
const ProcessingTickInterval = time.Second

// Processing status escalation thresholds.
const (
	ProcessingSoftThreshold = 5 * time.Second
	ProcessingHardThreshold = 10 * time.Second
)

// Escalated status texts shown when a response is slow to arrive.
const (
	StatusStillWorking = "Still working on it..."
	StatusTakingLong   = "This is taking longer than usual..."
)

// StatusThinkingFallback is used when a processing event carries no status.
const StatusThinkingFallback = "Thinking..."

// DefaultMaxMessageLength caps composer input.
const DefaultMaxMessageLength = 4000

// DefaultArchivePageSize is how many archived messages one backward page
// fetch returns.
const DefaultArchivePageSize = 50

// DefaultRecentWindow is the size of the server's recent-messages window
// mirrored by the local cache.
const DefaultRecentWindow = 50

// MinEventBusBufferSize is the minimum buffer per subscriber channel.
const MinEventBusBufferSize = 256

// SSE reconnect backoff bounds.
const (
	StreamReconnectMinDelay = time.Second
	StreamReconnectMaxDelay = 30 * time.Second
)

// APIRequestTimeout caps a single REST call.
const APIRequestTimeout = 30 * time.Second

// ProviderRequestTimeout caps one offline provider turn.
const ProviderRequestTimeout = 5 * time.Minute

// ComposerHeight is the number of textarea rows in the chat view.
const ComposerHeight = 3

// Techniques available for new dialogues. The server may extend this list;
// these are the ones every deployment ships with.
var Techniques = []string{
	"elenchus",
	"maieutics",
	"dialectic",
	"counterexample",
	"definition",
}
