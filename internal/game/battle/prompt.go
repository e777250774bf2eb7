package battle

import (
	"context"
	"time"
)

// DecisionKind classifies what a prompted human did.
type DecisionKind int

const (
	// Chose means the user picked one of the offered options.
	Chose DecisionKind = iota
	// Declined means the user explicitly refused to pick.
	Declined
	// TimedOut means the wait elapsed without any input. Not an error: the
	// engine treats it as a valid terminal input.
	TimedOut
)

// Decision is the outcome of a single human prompt.
type Decision struct {
	Kind DecisionKind
	// Choice is the selected option index. Meaningful only when Kind is Chose.
	Choice int
}

// Choose builds a Decision for a picked option index.
func Choose(i int) Decision { return Decision{Kind: Chose, Choice: i} }

// Decline is the Decision for an explicit refusal.
var Decline = Decision{Kind: Declined}

// Timeout is the Decision for an elapsed wait.
var Timeout = Decision{Kind: TimedOut}

// Prompter asks a human for battle input. Implementations bridge to the
// chat transport; tests script them. A Prompter must honor the timeout and
// return Timeout rather than an error when it elapses.
type Prompter interface {
	// AskOption presents options to the user and waits for a pick.
	AskOption(ctx context.Context, userID int64, prompt string, options []string, timeout time.Duration) Decision
	// Confirm asks the user a yes/no question. Chose with Choice 0 means yes.
	Confirm(ctx context.Context, userID int64, prompt string, timeout time.Duration) Decision
}
