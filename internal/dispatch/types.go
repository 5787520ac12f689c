package dispatch

// Kind classifies a scheduled background task.
type Kind string

const (
	// KindReply answers a human message: training evaluation when a question
	// is pending, otherwise a plain generated reply.
	KindReply Kind = "reply"
	// KindStartTraining puts the sender into training mode.
	KindStartTraining Kind = "start_training"
	// KindStopTraining takes the sender out of training mode.
	KindStopTraining Kind = "stop_training"
)

// ReplyTask is a deferred unit of work for one inbound message. It captures
// only the data the background task needs; it is never shared between tasks.
type ReplyTask struct {
	ID      string
	Kind    Kind
	User    string
	Channel string
	Prompt  string
}

// Ack is the synchronous response body for an accepted event.
type Ack struct {
	OK        bool   `json:"ok,omitempty"`
	Challenge string `json:"challenge,omitempty"`
}

// AckOK acknowledges receipt with no further action promised.
func AckOK() Ack {
	return Ack{OK: true}
}

// AckChallenge echoes the platform's setup handshake token verbatim.
func AckChallenge(token string) Ack {
	return Ack{Challenge: token}
}
