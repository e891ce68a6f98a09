package domain

// Outcome is the terminal classification of an incoming message
type Outcome int

const (
	// OutcomeCommand means the message is an admin command and must be routed,
	// never logged to history
	OutcomeCommand Outcome = iota
	// OutcomeAdmitted means the bot should generate a reply
	OutcomeAdmitted
	// OutcomeSuppressed means the message is logged for context but gets no reply
	OutcomeSuppressed
)

// Decision is the admission result for one incoming message
type Decision struct {
	Outcome Outcome

	// Command and Args are set only for OutcomeCommand
	Command string
	Args    string

	// Config is the conversation configuration in effect, always set
	Config *ConversationConfig
}
