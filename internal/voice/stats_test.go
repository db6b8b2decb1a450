package voice

import (
	"reflect"
	"testing"
	"time"

	"github.com/drerries/wantedboard/internal/models"
)

func TestAggregateScenario(t *testing.T) {
	sessions := []models.VoiceSession{
		closedSession("s1", "A", "userA", "general",
			time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), 30*time.Minute),
		closedSession("s2", "A", "userA", "general",
			time.Date(2025, 1, 1, 14, 0, 0, 0, time.UTC), 10*time.Minute),
		closedSession("s3", "B", "userB", "music",
			time.Date(2025, 1, 1, 10, 15, 0, 0, time.UTC), 30*time.Minute),
	}

	snap := Aggregate(sessions)

	if snap.TotalHours != 1.2 {
		t.Errorf("total hours = %v, want 1.2", snap.TotalHours)
	}

	if len(snap.TopUsers) != 2 {
		t.Fatalf("top users length = %d, want 2", len(snap.TopUsers))
	}
	if snap.TopUsers[0].UserID != "A" || snap.TopUsers[0].TotalSeconds != 2400 {
		t.Errorf("top user = %+v, want A with 2400s", snap.TopUsers[0])
	}
	if snap.TopUsers[1].UserID != "B" || snap.TopUsers[1].TotalSeconds != 1800 {
		t.Errorf("second user = %+v, want B with 1800s", snap.TopUsers[1])
	}

	if len(snap.ChannelStats) != 2 {
		t.Fatalf("channel stats length = %d, want 2", len(snap.ChannelStats))
	}
	if snap.ChannelStats[0].ChannelName != "general" || snap.ChannelStats[0].TotalSessions != 2 {
		t.Errorf("first channel = %+v, want general with 2", snap.ChannelStats[0])
	}
	if snap.ChannelStats[1].ChannelName != "music" || snap.ChannelStats[1].TotalSessions != 1 {
		t.Errorf("second channel = %+v, want music with 1", snap.ChannelStats[1])
	}
}

func TestAggregateExcludesLiveSessions(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	closed := []models.VoiceSession{
		closedSession("s1", "u1", "alice", "general", base, time.Hour),
		closedSession("s2", "u2", "bob", "music", base.Add(time.Hour), 30*time.Minute),
	}
	mixed := append([]models.VoiceSession{
		liveSession("s3", "u3", "carol", "general", base.Add(2*time.Hour)),
	}, closed...)
	mixed = append(mixed, liveSession("s4", "u1", "alice", "music", base.Add(3*time.Hour)))

	if !reflect.DeepEqual(Aggregate(mixed), Aggregate(closed)) {
		t.Error("aggregate over mixed input must equal aggregate over closed subset")
	}
}

func TestAggregateEmpty(t *testing.T) {
	for _, input := range [][]models.VoiceSession{
		nil,
		{},
		{liveSession("s1", "u1", "alice", "general", time.Now())},
	} {
		snap := Aggregate(input)
		if snap.TotalHours != 0 {
			t.Errorf("total hours = %v, want 0", snap.TotalHours)
		}
		if len(snap.TopUsers) != 0 || len(snap.ChannelStats) != 0 {
			t.Error("expected empty top users and channel stats")
		}
		// The degenerate case skips the 24 zero buckets entirely.
		if len(snap.PeakHours) != 0 {
			t.Errorf("peak hours length = %d, want 0 for empty input", len(snap.PeakHours))
		}
		if snap.TopUsers == nil || snap.PeakHours == nil || snap.ChannelStats == nil {
			t.Error("empty snapshot slices must be non-nil for JSON encoding")
		}
	}
}

func TestAggregatePeakHoursCompleteness(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var sessions []models.VoiceSession
	// Three starts at 10:00, one at 14:00, one at 23:00.
	for i, hour := range []int{10, 10, 10, 14, 23} {
		sessions = append(sessions, closedSession(
			string(rune('a'+i)), "u1", "alice", "general",
			base.Add(time.Duration(hour)*time.Hour), time.Minute))
	}

	snap := Aggregate(sessions)

	if len(snap.PeakHours) != 24 {
		t.Fatalf("peak hours length = %d, want 24", len(snap.PeakHours))
	}
	total := 0
	for _, bucket := range snap.PeakHours {
		total += bucket.Count
	}
	if total != len(sessions) {
		t.Errorf("bucket counts sum to %d, want %d", total, len(sessions))
	}
	if snap.PeakHours[0].Hour != 10 || snap.PeakHours[0].Count != 3 {
		t.Errorf("busiest bucket = %+v, want hour 10 with 3", snap.PeakHours[0])
	}
	for i := 1; i < len(snap.PeakHours); i++ {
		if snap.PeakHours[i].Count > snap.PeakHours[i-1].Count {
			t.Fatal("peak hours must be sorted by count descending")
		}
	}
}

func TestAggregatePeakHoursUseUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	// 15:00 local is 10:00 UTC.
	sessions := []models.VoiceSession{
		closedSession("s1", "u1", "alice", "general",
			time.Date(2025, 1, 1, 15, 0, 0, 0, loc), time.Minute),
	}

	snap := Aggregate(sessions)
	if snap.PeakHours[0].Hour != 10 || snap.PeakHours[0].Count != 1 {
		t.Errorf("busiest bucket = %+v, want UTC hour 10", snap.PeakHours[0])
	}
}

func TestAggregateTopUsersCap(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	var sessions []models.VoiceSession
	for i := 0; i < 15; i++ {
		sessions = append(sessions, closedSession(
			string(rune('a'+i)), string(rune('A'+i)), "user", "general",
			base, time.Duration(15-i)*time.Minute))
	}

	snap := Aggregate(sessions)
	if len(snap.TopUsers) != 10 {
		t.Fatalf("top users length = %d, want 10", len(snap.TopUsers))
	}
	for i := 1; i < len(snap.TopUsers); i++ {
		if snap.TopUsers[i].TotalSeconds > snap.TopUsers[i-1].TotalSeconds {
			t.Fatal("top users must be sorted by total seconds descending")
		}
	}
}

func TestAggregateUsernameLastWriteWins(t *testing.T) {
	// Input arrives newest-first, so the oldest session's username is the
	// last one processed and ends up on the leaderboard.
	sessions := []models.VoiceSession{
		closedSession("newest", "u1", "NewName", "general",
			time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC), time.Hour),
		closedSession("oldest", "u1", "OldName", "general",
			time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), time.Hour),
	}

	snap := Aggregate(sessions)
	if len(snap.TopUsers) != 1 {
		t.Fatalf("top users length = %d, want 1", len(snap.TopUsers))
	}
	if snap.TopUsers[0].Username != "OldName" {
		t.Errorf("username = %q, want %q (last processed in input order)", snap.TopUsers[0].Username, "OldName")
	}
	if snap.TopUsers[0].TotalSeconds != 7200 {
		t.Errorf("total seconds = %d, want 7200", snap.TopUsers[0].TotalSeconds)
	}
}

func TestAggregateRoundsHalfUp(t *testing.T) {
	// 270 seconds = 0.075 hours, tenths digit rounds half-up to 0.1.
	sessions := []models.VoiceSession{
		closedSession("s1", "u1", "alice", "general",
			time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), 270*time.Second),
	}
	if got := Aggregate(sessions).TotalHours; got != 0.1 {
		t.Errorf("total hours = %v, want 0.1", got)
	}

	// 540 seconds = 0.15 hours, rounds half-up to 0.2.
	sessions = []models.VoiceSession{
		closedSession("s1", "u1", "alice", "general",
			time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), 540*time.Second),
	}
	if got := Aggregate(sessions).TotalHours; got != 0.2 {
		t.Errorf("total hours = %v, want 0.2", got)
	}
}

func TestAggregateDeterministic(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	sessions := []models.VoiceSession{
		closedSession("s1", "u1", "alice", "general", base, time.Hour),
		closedSession("s2", "u2", "bob", "music", base.Add(time.Hour), time.Hour),
		closedSession("s3", "u3", "carol", "afk", base.Add(2*time.Hour), time.Hour),
	}

	first := Aggregate(sessions)
	second := Aggregate(sessions)
	if !reflect.DeepEqual(first, second) {
		t.Error("aggregate must be deterministic for a fixed input sequence")
	}
}
