package model

// Phase is the presentation-facing view state a participant derives from a
// challenge record. Phases are recomputed from scratch on every change-feed
// delivery; they carry no server-side state.
type Phase string

const (
	PhaseInitial    Phase = "initial"     // Recipient deciding to accept or reject
	PhaseSetRange   Phase = "set_range"   // Recipient accepted locally, choosing a range
	PhasePickNumber Phase = "pick_number" // Viewer has not submitted a number yet
	PhaseWaiting    Phase = "waiting"     // Viewer submitted, opponent has not
	PhaseReveal     Phase = "reveal"      // Both numbers in; result visible
	PhaseClosed     Phase = "closed"      // Rejected, or viewing someone else's pending dare
)

// PhaseFor reduces a challenge record to the viewer's phase. rangeChosen is
// the accepting party's local signal that they have started picking a range
// before the accept has committed; it only matters while the record is still
// pending. The reveal phase is reachable only through a committed record
// carrying status completed, never through local prediction, so both
// participants observe identical final numbers regardless of submission
// order.
func PhaseFor(c *Challenge, viewerID string, rangeChosen bool) Phase {
	if c == nil || !c.IsParticipant(viewerID) {
		return PhaseClosed
	}

	switch c.Status {
	case ChallengeStatusPending:
		if viewerID != c.ToUser {
			// Proposer waits for the recipient's decision.
			return PhaseWaiting
		}
		if rangeChosen {
			return PhaseSetRange
		}
		return PhaseInitial

	case ChallengeStatusAccepted:
		return PhasePickNumber

	case ChallengeStatusActive:
		if c.HasNumber(viewerID) {
			return PhaseWaiting
		}
		return PhasePickNumber

	case ChallengeStatusCompleted:
		return PhaseReveal

	case ChallengeStatusRejected:
		return PhaseClosed
	}

	return PhaseClosed
}
