package metrics

import (
	"reflect"
	"testing"

	"trade-journal/internal/domain"
)

// streakFixture is a 14-trade book with a hand-counted run layout:
//
//	WWW LL | B | W L WW LLL W
//
// Runs: W3(+60) L2(-40) W1(+5) L1(-10) W2(+20) L3(-15) W1(+40)
func streakFixture() []*domain.TradeRecord {
	trades := sequence("WWWLLBWLWWLLLW",
		10, 20, 30, -15, -25, 0, 5, -10, 8, 12, -5, -5, -5, 40)
	trades[1].Pair = "GBPUSD"
	return trades
}

func TestAnalyzeStreaks_Distribution(t *testing.T) {
	a := AnalyzeStreaks(streakFixture())

	wantWin := map[int]int{1: 2, 2: 1, 3: 1}
	wantLoss := map[int]int{1: 1, 2: 1, 3: 1}
	if !reflect.DeepEqual(a.WinStreakDistribution, wantWin) {
		t.Errorf("WinStreakDistribution = %v, want %v", a.WinStreakDistribution, wantWin)
	}
	if !reflect.DeepEqual(a.LossStreakDistribution, wantLoss) {
		t.Errorf("LossStreakDistribution = %v, want %v", a.LossStreakDistribution, wantLoss)
	}

	// Histogram sums equal run counts per type
	winRuns, lossRuns := 0, 0
	for _, s := range a.Streaks {
		if s.Type == domain.StreakWin {
			winRuns++
		} else {
			lossRuns++
		}
	}
	if sumCounts(a.WinStreakDistribution) != winRuns || winRuns != 4 {
		t.Errorf("win histogram sum %d, runs %d, want 4", sumCounts(a.WinStreakDistribution), winRuns)
	}
	if sumCounts(a.LossStreakDistribution) != lossRuns || lossRuns != 3 {
		t.Errorf("loss histogram sum %d, runs %d, want 3", sumCounts(a.LossStreakDistribution), lossRuns)
	}
}

func TestAnalyzeStreaks_Records(t *testing.T) {
	a := AnalyzeStreaks(streakFixture())

	if len(a.Streaks) != 7 {
		t.Fatalf("expected 7 runs, got %d", len(a.Streaks))
	}

	first := a.Streaks[0]
	if first.Type != domain.StreakWin || first.Length != 3 || first.TotalPnl != 60 {
		t.Errorf("first run = %+v", first)
	}
	if !first.StartDate.Equal(day(0)) || !first.EndDate.Equal(day(2)) {
		t.Errorf("first run dates = %v..%v", first.StartDate, first.EndDate)
	}
	if !reflect.DeepEqual(first.Pairs, []string{"EURUSD", "GBPUSD"}) {
		t.Errorf("first run pairs = %v", first.Pairs)
	}

	if a.LongestWinStreak == nil || a.LongestWinStreak.Length != 3 || !a.LongestWinStreak.StartDate.Equal(day(0)) {
		t.Errorf("LongestWinStreak = %+v", a.LongestWinStreak)
	}
	if a.LongestLossStreak == nil || a.LongestLossStreak.Length != 3 || !a.LongestLossStreak.StartDate.Equal(day(10)) {
		t.Errorf("LongestLossStreak = %+v", a.LongestLossStreak)
	}
	if a.CurrentStreak == nil || a.CurrentStreak.Type != domain.StreakWin || a.CurrentStreak.Length != 1 {
		t.Errorf("CurrentStreak = %+v", a.CurrentStreak)
	}
}

func TestAnalyzeStreaks_Averages(t *testing.T) {
	a := AnalyzeStreaks(streakFixture())

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"AvgWinStreakLength", a.AvgWinStreakLength, 7.0 / 4.0},
		{"AvgLossStreakLength", a.AvgLossStreakLength, 2},
		// (60 + 20) over 5 trades in win runs of length >= 2
		{"AvgPnlDuringWinStreaks", a.AvgPnlDuringWinStreaks, 16},
		// (-40 - 15) over 5 trades
		{"AvgPnlDuringLossStreaks", a.AvgPnlDuringLossStreaks, -11},
		// isolated trades: +5, -10, +40
		{"AvgPnlBaseline", a.AvgPnlBaseline, 35.0 / 3.0},
		// recoveries take 9, 2 and 1 trades
		{"AvgRecoveryTrades", a.AvgRecoveryTrades, 4},
	}
	for _, c := range checks {
		if !approx(c.got, c.want) {
			t.Errorf("%s = %f, want %f", c.name, c.got, c.want)
		}
	}
	if a.RecoveredStreaks != 3 {
		t.Errorf("RecoveredStreaks = %d, want 3", a.RecoveredStreaks)
	}
}

func TestAnalyzeStreaks_UnrecoveredExcluded(t *testing.T) {
	// Loss run never climbs back to +10
	a := AnalyzeStreaks(sequence("WLL", 10, -5, -5))

	if a.RecoveredStreaks != 0 || a.AvgRecoveryTrades != 0 {
		t.Errorf("recovery = %f over %d, want 0 over 0", a.AvgRecoveryTrades, a.RecoveredStreaks)
	}
}

func TestAnalyzeStreaks_TieKeepsEarliest(t *testing.T) {
	a := AnalyzeStreaks(sequence("WWLWW", 1, 1, -1, 1, 1))

	if a.LongestWinStreak == nil || !a.LongestWinStreak.StartDate.Equal(day(0)) {
		t.Errorf("LongestWinStreak = %+v, want run starting day 0", a.LongestWinStreak)
	}
}

func TestAnalyzeStreaks_EndsOnBreakeven(t *testing.T) {
	a := AnalyzeStreaks(sequence("WWB", 1, 1, 0))

	if a.CurrentStreak != nil {
		t.Errorf("CurrentStreak = %+v, want nil", a.CurrentStreak)
	}
	if a.LongestWinStreak == nil || a.LongestWinStreak.Length != 2 {
		t.Errorf("LongestWinStreak = %+v", a.LongestWinStreak)
	}
}

func TestAnalyzeStreaks_Empty(t *testing.T) {
	a := AnalyzeStreaks(nil)

	if a.CurrentStreak != nil || a.LongestWinStreak != nil || a.LongestLossStreak != nil {
		t.Errorf("expected nil streaks, got %+v", a)
	}
	if a.WinStreakDistribution == nil || len(a.WinStreakDistribution) != 0 {
		t.Errorf("expected empty non-nil histogram, got %v", a.WinStreakDistribution)
	}
}

func TestAnalyzeStreaks_UnsortedInput(t *testing.T) {
	trades := streakFixture()
	reversed := make([]*domain.TradeRecord, len(trades))
	for i, tr := range trades {
		reversed[len(trades)-1-i] = tr
	}

	if !reflect.DeepEqual(AnalyzeStreaks(trades), AnalyzeStreaks(reversed)) {
		t.Error("analysis depends on input order")
	}
}

func sumCounts(h map[int]int) int {
	total := 0
	for _, n := range h {
		total += n
	}
	return total
}
