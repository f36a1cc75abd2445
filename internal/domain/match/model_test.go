package match

import (
	"testing"
	"time"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	m := Match{ID: 7, Team1ID: 1, Team2ID: 2}
	cases := []struct {
		name       string
		s1, s2     int
		policy     TiePolicy
		wantWinner int64
		wantTie    bool
		wantScore  string
	}{
		{name: "team1 wins", s1: 24, s2: 17, policy: TiePolicyNull, wantWinner: 1, wantScore: "24-17"},
		{name: "team2 wins", s1: 9, s2: 10, policy: TiePolicyNull, wantWinner: 2, wantScore: "9-10"},
		{name: "double digit compare is numeric", s1: 9, s2: 10, policy: TiePolicyTeam1, wantWinner: 2, wantScore: "9-10"},
		{name: "tie null", s1: 14, s2: 14, policy: TiePolicyNull, wantTie: true, wantScore: "14-14"},
		{name: "tie team1", s1: 14, s2: 14, policy: TiePolicyTeam1, wantWinner: 1, wantScore: "14-14"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Decide(m, tc.s1, tc.s2, tc.policy)
			if got.MatchID != 7 || got.Score != tc.wantScore {
				t.Fatalf("unexpected result: got=%+v", got)
			}
			if tc.wantTie {
				if !got.IsTie() {
					t.Fatalf("expected tie, got winner=%d", *got.WinnerTeamID)
				}
				return
			}
			if got.WinnerTeamID == nil || *got.WinnerTeamID != tc.wantWinner {
				t.Fatalf("unexpected winner: got=%v want=%d", got.WinnerTeamID, tc.wantWinner)
			}
		})
	}
}

func TestParseTiePolicy(t *testing.T) {
	t.Parallel()

	if p, err := ParseTiePolicy(""); err != nil || p != TiePolicyNull {
		t.Fatalf("unexpected default policy: got=%q err=%v", p, err)
	}
	if p, err := ParseTiePolicy(" TEAM1 "); err != nil || p != TiePolicyTeam1 {
		t.Fatalf("unexpected policy: got=%q err=%v", p, err)
	}
	if _, err := ParseTiePolicy("coinflip"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestStartOfDay(t *testing.T) {
	t.Parallel()

	got := StartOfDay(time.Date(2021, 12, 16, 20, 15, 0, 0, time.UTC))
	want := time.Date(2021, 12, 16, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected day: got=%s want=%s", got, want)
	}
}
