package voice

import (
	"testing"
	"time"

	"github.com/drerries/wantedboard/internal/models"
)

func closedSession(id, userID, username, channel string, joined time.Time, duration time.Duration) models.VoiceSession {
	left := joined.Add(duration)
	secs := int64(duration / time.Second)
	return models.VoiceSession{
		ID:              id,
		UserID:          userID,
		Username:        username,
		ChannelID:       "c-" + channel,
		ChannelName:     channel,
		JoinedAt:        joined,
		LeftAt:          &left,
		DurationSeconds: &secs,
	}
}

func liveSession(id, userID, username, channel string, joined time.Time) models.VoiceSession {
	return models.VoiceSession{
		ID:          id,
		UserID:      userID,
		Username:    username,
		ChannelID:   "c-" + channel,
		ChannelName: channel,
		JoinedAt:    joined,
	}
}

func TestFilterNoCriteriaReturnsAll(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	sessions := []models.VoiceSession{
		closedSession("s1", "u1", "alice", "general", base.Add(2*time.Hour), time.Hour),
		liveSession("s2", "u2", "bob", "music", base.Add(time.Hour)),
		closedSession("s3", "u1", "alice", "general", base, 30*time.Minute),
	}

	got := Filter(sessions, Criteria{})
	if len(got) != 3 {
		t.Fatalf("got %d sessions, want 3", len(got))
	}
	for i := range sessions {
		if got[i].ID != sessions[i].ID {
			t.Errorf("position %d: got %s, want %s (order must be preserved)", i, got[i].ID, sessions[i].ID)
		}
	}
}

func TestFilterLiveOnly(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	sessions := []models.VoiceSession{
		closedSession("s1", "u1", "alice", "general", base.Add(4*time.Hour), time.Hour),
		liveSession("s2", "u2", "bob", "music", base.Add(3*time.Hour)),
		closedSession("s3", "u3", "carol", "general", base.Add(2*time.Hour), time.Hour),
		liveSession("s4", "u4", "dave", "afk", base.Add(time.Hour)),
		closedSession("s5", "u5", "erin", "music", base, time.Hour),
	}

	got := Filter(sessions, Criteria{LiveOnly: true})
	if len(got) != 2 {
		t.Fatalf("got %d live sessions, want 2", len(got))
	}
	if got[0].ID != "s2" || got[1].ID != "s4" {
		t.Errorf("got %s,%s; want s2,s4 in original order", got[0].ID, got[1].ID)
	}
}

func TestFilterUserSubstringCaseInsensitive(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	sessions := []models.VoiceSession{
		closedSession("s1", "u1", "AliceDrerrie", "general", base, time.Hour),
		closedSession("s2", "u2", "bob", "general", base, time.Hour),
	}

	got := Filter(sessions, Criteria{UserSubstring: "alice"})
	if len(got) != 1 || got[0].ID != "s1" {
		t.Fatalf("got %v, want only s1", got)
	}
}

func TestFilterChannelSubstring(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	sessions := []models.VoiceSession{
		closedSession("s1", "u1", "alice", "General Chat", base, time.Hour),
		closedSession("s2", "u2", "bob", "Music Lounge", base, time.Hour),
	}

	got := Filter(sessions, Criteria{ChannelSubstring: "music"})
	if len(got) != 1 || got[0].ID != "s2" {
		t.Fatalf("got %v, want only s2", got)
	}
}

func TestFilterDateBoundsInclusive(t *testing.T) {
	from := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	sessions := []models.VoiceSession{
		closedSession("before", "u1", "a", "general", from.Add(-time.Second), time.Hour),
		closedSession("onFrom", "u2", "b", "general", from, time.Hour),
		closedSession("between", "u3", "c", "general", from.Add(12*time.Hour), time.Hour),
		closedSession("onTo", "u4", "d", "general", to, time.Hour),
		closedSession("after", "u5", "e", "general", to.Add(time.Second), time.Hour),
	}

	got := Filter(sessions, Criteria{DateFrom: from, DateTo: to})
	if len(got) != 3 {
		t.Fatalf("got %d sessions, want 3", len(got))
	}
	want := []string{"onFrom", "between", "onTo"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestFilterCombinesCriteria(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	sessions := []models.VoiceSession{
		liveSession("s1", "u1", "alice", "general", base.Add(time.Hour)),
		closedSession("s2", "u1", "alice", "general", base, time.Hour),
		liveSession("s3", "u2", "bob", "general", base),
	}

	got := Filter(sessions, Criteria{UserSubstring: "ali", LiveOnly: true})
	if len(got) != 1 || got[0].ID != "s1" {
		t.Fatalf("got %v, want only s1", got)
	}
}

func TestFilterEmptyResultIsNotError(t *testing.T) {
	got := Filter(nil, Criteria{UserSubstring: "nobody"})
	if len(got) != 0 {
		t.Fatalf("got %d sessions, want 0", len(got))
	}
}
