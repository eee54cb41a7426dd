package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from LobbyStatus
		to   LobbyStatus
		want bool
	}{
		{StatusLobby, StatusChoosingWord, true},
		{StatusLobby, StatusPlaying, false},
		{StatusChoosingWord, StatusPlaying, true},
		{StatusChoosingWord, StatusLobby, false},
		{StatusPlaying, StatusPlaying, true},
		{StatusPlaying, StatusReveal, true},
		{StatusPlaying, StatusChoosingWord, false},
		{StatusReveal, StatusChoosingWord, true},
		{StatusReveal, StatusLobby, false},
		{StatusReveal, StatusPlaying, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestNewLobby(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	host := &Player{ID: "p1", Name: "Alice", JoinedAt: now.UnixMilli(), Connected: true}

	l := NewLobby("AB12", host, now)

	if l.Status != StatusLobby || l.Round != 0 || l.Winner != WinnerNone {
		t.Fatalf("unexpected initial state: %+v", l)
	}
	if l.HostID != "p1" || len(l.Players) != 1 {
		t.Fatalf("creator must be sole player and host: %+v", l)
	}
	if l.Settings != DefaultSettings() {
		t.Fatalf("expected default settings, got %+v", l.Settings)
	}
}

func TestSortedPlayers(t *testing.T) {
	l := &Lobby{Players: map[string]*Player{
		"c": {ID: "c", JoinedAt: 100},
		"a": {ID: "a", JoinedAt: 300},
		"b": {ID: "b", JoinedAt: 100}, // same instant as c, id breaks the tie
	}}

	got := l.SortedPlayers()
	want := []string{"b", "c", "a"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("expected order %v, got %s at %d", want, got[i].ID, i)
		}
	}
}

func TestCurrentVotes_NeverNil(t *testing.T) {
	l := &Lobby{Round: 2}
	if l.CurrentVotes() == nil {
		t.Fatal("nil votes map")
	}

	l.Votes = map[int]map[string]string{1: {"p1": "p2"}}
	if len(l.CurrentVotes()) != 0 {
		t.Fatal("round 2 must not see round 1 ballots")
	}

	l.Round = 1
	if l.CurrentVotes()["p1"] != "p2" {
		t.Fatal("current round ballots missing")
	}
}

func TestAliveCounts(t *testing.T) {
	l := &Lobby{Players: map[string]*Player{
		"p1": {ID: "p1", IsImpostor: true},
		"p2": {ID: "p2"},
		"p3": {ID: "p3", Eliminated: true},
		"p4": {ID: "p4", IsImpostor: true, Eliminated: true},
	}}

	impostors, citizens := l.AliveCounts()
	if impostors != 1 || citizens != 1 {
		t.Fatalf("got %d impostors, %d citizens", impostors, citizens)
	}
}

func TestImpostorQuota(t *testing.T) {
	cases := []struct {
		configured int
		candidates int
		want       int
	}{
		{1, 4, 1},
		{3, 4, 3},
		{99, 4, 4},
		{0, 4, 1},
		{-2, 4, 1},
		{2, 1, 1},
	}
	for _, tc := range cases {
		l := &Lobby{Settings: Settings{ImpostorCount: tc.configured}}
		if got := l.ImpostorQuota(tc.candidates); got != tc.want {
			t.Errorf("quota(%d of %d) = %d, want %d", tc.configured, tc.candidates, got, tc.want)
		}
	}
}

// The JSON document is the shared contract with other clients of the store;
// its field names must stay put.
func TestLobby_WireFieldNames(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewLobby("AB12", &Player{ID: "p1", Name: "Alice", JoinedAt: now.UnixMilli()}, now)
	l.Votes = map[int]map[string]string{1: {"p1": "p2"}}
	l.Results = map[int]RoundResult{1: {Tally: map[string]int{"p2": 1}, EliminatedID: "p2", Winner: WinnerNone}}

	raw, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"code", "hostId", "createdAt", "status", "round", "settings", "winner", "players", "votes", "results"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing wire field %q", key)
		}
	}

	var votes map[string]map[string]string
	if err := json.Unmarshal(doc["votes"], &votes); err != nil {
		t.Fatalf("votes layout: %v", err)
	}
	if votes["1"]["p1"] != "p2" {
		t.Fatalf("round keys must encode as strings: %+v", votes)
	}
}
