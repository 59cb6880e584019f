package model

import "testing"

func TestChallengeRangeValid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		r     ChallengeRange
		valid bool
	}{
		{"simple", ChallengeRange{Min: 1, Max: 10}, true},
		{"adjacent", ChallengeRange{Min: 5, Max: 6}, true},
		{"equal", ChallengeRange{Min: 5, Max: 5}, false},
		{"inverted", ChallengeRange{Min: 10, Max: 1}, false},
		{"zero min", ChallengeRange{Min: 0, Max: 10}, false},
		{"negative", ChallengeRange{Min: -3, Max: 3}, false},
	}

	for _, tc := range cases {
		if got := tc.r.Valid(); got != tc.valid {
			t.Errorf("%s: Valid() = %v, expected %v", tc.name, got, tc.valid)
		}
	}
}

func TestChallengeRangeContains(t *testing.T) {
	t.Parallel()

	r := ChallengeRange{Min: 1, Max: 10}

	for _, v := range []int{1, 5, 10} {
		if !r.Contains(v) {
			t.Errorf("expected %d inside [1,10]", v)
		}
	}
	for _, v := range []int{0, 11, -1} {
		if r.Contains(v) {
			t.Errorf("expected %d outside [1,10]", v)
		}
	}
}

func TestChallengeParticipants(t *testing.T) {
	t.Parallel()

	c := &Challenge{FromUser: "alice", ToUser: "bob"}

	if !c.IsParticipant("alice") || !c.IsParticipant("bob") {
		t.Error("expected both parties to be participants")
	}
	if c.IsParticipant("mallory") {
		t.Error("expected mallory to be excluded")
	}
	if got := c.Opponent("alice"); got != "bob" {
		t.Errorf("expected opponent bob, got %q", got)
	}
	if got := c.Opponent("mallory"); got != "" {
		t.Errorf("expected empty opponent for outsider, got %q", got)
	}
}

func TestChallengeCloneIsDeep(t *testing.T) {
	t.Parallel()

	res := ChallengeResultMatch
	c := &Challenge{
		ID:      "challenge:1",
		Range:   &ChallengeRange{Min: 1, Max: 10},
		Numbers: map[string]int{"alice": 7},
		Result:  &res,
	}

	dup := c.Clone()
	dup.Range.Max = 99
	dup.Numbers["bob"] = 3
	*dup.Result = ChallengeResultNoMatch

	if c.Range.Max != 10 {
		t.Error("clone mutated original range")
	}
	if _, ok := c.Numbers["bob"]; ok {
		t.Error("clone mutated original numbers")
	}
	if *c.Result != ChallengeResultMatch {
		t.Error("clone mutated original result")
	}
}

func TestValidFriendCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code  string
		valid bool
	}{
		{"1234567890123456", true},
		{"9999999999999999", true},
		{"0234567890123456", false}, // leading zero
		{"123456789012345", false},  // too short
		{"12345678901234567", false},
		{"12345678901234ab", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := ValidFriendCode(tc.code); got != tc.valid {
			t.Errorf("ValidFriendCode(%q) = %v, expected %v", tc.code, got, tc.valid)
		}
	}
}

func TestOrderPair(t *testing.T) {
	t.Parallel()

	a, b := OrderPair("bob", "alice")
	if a != "alice" || b != "bob" {
		t.Errorf("expected (alice, bob), got (%s, %s)", a, b)
	}
	a, b = OrderPair("alice", "bob")
	if a != "alice" || b != "bob" {
		t.Errorf("expected stable order, got (%s, %s)", a, b)
	}
}
