package round

import (
	"errors"
	"fmt"
	"strings"
)

// Rule names a precondition a state machine call can fail
type Rule string

const (
	RuleRoundActive   Rule = "round_active"
	RuleChronology    Rule = "chronology"
	RuleUnknownPlayer Rule = "unknown_player"
	RuleActorAlive    Rule = "actor_alive"
	RuleTargetAlive   Rule = "target_alive"
	RuleSide          Rule = "side"
	RuleSpikeState    Rule = "spike_state"
	RuleSpikeHolder   Rule = "spike_holder"
	RuleDuration      Rule = "duration"
	RuleInvalidInput  Rule = "invalid_input"
)

// Violation is a single failed precondition
type Violation struct {
	Rule    Rule   `json:"rule"`
	Message string `json:"message"`
}

// Rejected is returned by every mutator whose preconditions do not hold.
// Rejections are expected and frequent: the caller skips the action and
// carries on. Nothing is appended to the timeline for a rejected call.
type Rejected struct {
	Action     string      `json:"action"`
	Violations []Violation `json:"violations"`
}

func (r *Rejected) Error() string {
	parts := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		parts = append(parts, fmt.Sprintf("%s (%s)", v.Rule, v.Message))
	}
	return fmt.Sprintf("%s rejected: %s", r.Action, strings.Join(parts, "; "))
}

// Has returns true if the rejection lists the given rule
func (r *Rejected) Has(rule Rule) bool {
	for _, v := range r.Violations {
		if v.Rule == rule {
			return true
		}
	}
	return false
}

// AsRejected unwraps a state machine rejection from an error
func AsRejected(err error) (*Rejected, bool) {
	var r *Rejected
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// guard collects precondition failures for a single call
type guard struct {
	action     string
	violations []Violation
}

func (g *guard) require(ok bool, rule Rule, format string, args ...any) {
	if !ok {
		g.violations = append(g.violations, Violation{Rule: rule, Message: fmt.Sprintf(format, args...)})
	}
}

func (g *guard) failed() bool { return len(g.violations) > 0 }

func (g *guard) err() error {
	if !g.failed() {
		return nil
	}
	return &Rejected{Action: g.action, Violations: g.violations}
}
