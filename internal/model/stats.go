package model

// UserGameStats summarizes one user's challenge history
type UserGameStats struct {
	UserID              string  `json:"user_id"`
	TotalChallenges     int     `json:"total_challenges"`
	PendingChallenges   int     `json:"pending_challenges"`
	ActiveChallenges    int     `json:"active_challenges"`
	CompletedChallenges int     `json:"completed_challenges"`
	RejectedChallenges  int     `json:"rejected_challenges"`
	Matches             int     `json:"matches"`
	NoMatches           int     `json:"no_matches"`
	MatchRate           float64 `json:"match_rate"` // matches / completed, 0 when none completed
}

// GlobalGameStats summarizes all completed challenges
type GlobalGameStats struct {
	TotalChallenges     int     `json:"total_challenges"`
	CompletedChallenges int     `json:"completed_challenges"`
	Matches             int     `json:"matches"`
	NoMatches           int     `json:"no_matches"`
	MatchRate           float64 `json:"match_rate"`
	UniquePlayers       int     `json:"unique_players"`
}

// NumberStats counts how often a number was submitted and how often it matched
type NumberStats struct {
	Number       int `json:"number"`
	TimesPicked  int `json:"times_picked"`
	TimesInMatch int `json:"times_in_match"`
}

// PlayerPair counts challenges between a specific pair of users
type PlayerPair struct {
	UserA      string `json:"user_a"`
	UserB      string `json:"user_b"`
	Challenges int    `json:"challenges"`
	Matches    int    `json:"matches"`
}
