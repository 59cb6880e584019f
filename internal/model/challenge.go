package model

import "time"

// ChallengeStatus represents the lifecycle stage of a challenge
type ChallengeStatus string

const (
	ChallengeStatusPending   ChallengeStatus = "pending"   // Waiting for the recipient to respond
	ChallengeStatusAccepted  ChallengeStatus = "accepted"  // Range committed, no numbers yet
	ChallengeStatusActive    ChallengeStatus = "active"    // One participant has submitted
	ChallengeStatusCompleted ChallengeStatus = "completed" // Both numbers in, result committed
	ChallengeStatusRejected  ChallengeStatus = "rejected"  // Recipient declined (terminal)
)

// IsTerminal returns true for statuses with no outgoing transitions
func (s ChallengeStatus) IsTerminal() bool {
	return s == ChallengeStatusCompleted || s == ChallengeStatusRejected
}

// ChallengeResult represents the outcome of a completed challenge
type ChallengeResult string

const (
	ChallengeResultMatch   ChallengeResult = "match"    // Numbers were equal; dare is owed
	ChallengeResultNoMatch ChallengeResult = "no_match" // Numbers differed
)

// Validation constants for challenges
const (
	MaxDescriptionLength = 500
	MinRangeValue        = 1
)

// ChallengeRange is the closed integer interval both participants draw from
type ChallengeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether value lies within the closed interval [Min, Max]
func (r ChallengeRange) Contains(value int) bool {
	return value >= r.Min && value <= r.Max
}

// Valid reports whether the range satisfies 1 <= min < max
func (r ChallengeRange) Valid() bool {
	return r.Min >= MinRangeValue && r.Min < r.Max
}

// Challenge represents one instance of the dare/number-match game between
// two users. It is the aggregate root: every mutation replaces the whole
// record via a version-guarded write.
type Challenge struct {
	ID          string           `json:"id"`
	FromUser    string           `json:"from_user"` // Proposer
	ToUser      string           `json:"to_user"`   // Recipient
	Description string           `json:"description"`
	Status      ChallengeStatus  `json:"status"`
	Range       *ChallengeRange  `json:"range,omitempty"`
	Numbers     map[string]int   `json:"numbers,omitempty"` // user id -> submitted number
	Result      *ChallengeResult `json:"result,omitempty"`
	Version     int64            `json:"version"` // Optimistic concurrency guard
	CreatedOn   time.Time        `json:"created_on"`
	UpdatedOn   time.Time        `json:"updated_on"`
	CompletedOn *time.Time       `json:"completed_on,omitempty"`
}

// IsParticipant returns true if userID is either party of the challenge
func (c *Challenge) IsParticipant(userID string) bool {
	return userID == c.FromUser || userID == c.ToUser
}

// Opponent returns the other participant's user id, or "" for non-participants
func (c *Challenge) Opponent(userID string) string {
	switch userID {
	case c.FromUser:
		return c.ToUser
	case c.ToUser:
		return c.FromUser
	}
	return ""
}

// HasNumber returns true if userID has already submitted a number
func (c *Challenge) HasNumber(userID string) bool {
	_, ok := c.Numbers[userID]
	return ok
}

// BothNumbersIn returns true once both participants have submitted
func (c *Challenge) BothNumbersIn() bool {
	return c.HasNumber(c.FromUser) && c.HasNumber(c.ToUser)
}

// Clone returns a deep copy of the challenge. Mutation loops work on a copy
// so a failed compare-and-write never leaves a half-mutated record visible.
func (c *Challenge) Clone() *Challenge {
	dup := *c
	if c.Range != nil {
		r := *c.Range
		dup.Range = &r
	}
	if c.Numbers != nil {
		dup.Numbers = make(map[string]int, len(c.Numbers))
		for k, v := range c.Numbers {
			dup.Numbers[k] = v
		}
	}
	if c.Result != nil {
		res := *c.Result
		dup.Result = &res
	}
	if c.CompletedOn != nil {
		t := *c.CompletedOn
		dup.CompletedOn = &t
	}
	return &dup
}

// ProposeChallengeRequest is the body for POST /v1/challenges
type ProposeChallengeRequest struct {
	ToUser      string `json:"to_user"`
	Description string `json:"description"`
}

// AcceptChallengeRequest is the body for POST /v1/challenges/{id}/accept
type AcceptChallengeRequest struct {
	Range ChallengeRange `json:"range"`
}

// SubmitNumberRequest is the body for POST /v1/challenges/{id}/number
type SubmitNumberRequest struct {
	Value int `json:"value"`
}

// ChallengeDirection filters challenge lists by the viewer's role
type ChallengeDirection string

const (
	ChallengeDirectionIncoming ChallengeDirection = "incoming"
	ChallengeDirectionOutgoing ChallengeDirection = "outgoing"
	ChallengeDirectionAll      ChallengeDirection = "all"
)

// ChallengeView decorates a challenge with the viewer's derived phase
type ChallengeView struct {
	*Challenge
	Phase Phase `json:"phase"`
}

// ChallengeList is a paginated list of challenges
type ChallengeList struct {
	Challenges []*ChallengeView `json:"challenges"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
}
