package metrics

import (
	"math"
	"reflect"
	"testing"

	"trade-journal/internal/domain"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestNetPnl_Fallback(t *testing.T) {
	tests := []struct {
		name     string
		realized *float64
		manual   *float64
		want     float64
	}{
		{"realized wins", fp(12.5), fp(99), 12.5},
		{"realized zero still wins", fp(0), fp(99), 0},
		{"manual when no realized", nil, fp(-4), -4},
		{"zero when neither", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &domain.TradeRecord{RealizedPnl: tt.realized, Pnl: tt.manual}
			if got := NetPnl(tr); got != tt.want {
				t.Errorf("NetPnl = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestCalculateRR(t *testing.T) {
	tests := []struct {
		name   string
		entry  *float64
		stop   *float64
		exit   *float64
		result domain.Result
		check  func(float64) bool
	}{
		{"win is positive 2R", fp(100), fp(95), fp(110), domain.ResultWin, func(rr float64) bool { return approx(rr, 2) }},
		{"loss is negative", fp(100), fp(95), fp(110), domain.ResultLoss, func(rr float64) bool { return rr < 0 && approx(rr, -2) }},
		{"breakeven is non-positive", fp(100), fp(95), fp(101), domain.ResultBreakeven, func(rr float64) bool { return rr <= 0 }},
		{"no result is non-positive", fp(100), fp(95), fp(101), domain.ResultNone, func(rr float64) bool { return rr <= 0 }},
		{"no stop", fp(100), nil, fp(110), domain.ResultWin, func(rr float64) bool { return rr == 0 }},
		{"no entry", nil, fp(95), fp(110), domain.ResultWin, func(rr float64) bool { return rr == 0 }},
		{"zero risk", fp(100), fp(100), fp(110), domain.ResultWin, func(rr float64) bool { return rr == 0 }},
		{"no exit means zero reward", fp(100), fp(95), nil, domain.ResultWin, func(rr float64) bool { return rr == 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &domain.TradeRecord{EntryPrice: tt.entry, StopLoss: tt.stop, ExitPrice: tt.exit, Result: tt.result}
			if rr := CalculateRR(tr); !tt.check(rr) {
				t.Errorf("CalculateRR = %f", rr)
			}
		})
	}
}

func TestCalculateRR_DirectionDoesNotChangeMagnitude(t *testing.T) {
	long := &domain.TradeRecord{Direction: domain.DirectionLong, EntryPrice: fp(100), StopLoss: fp(95), ExitPrice: fp(110), Result: domain.ResultWin}
	short := &domain.TradeRecord{Direction: domain.DirectionShort, EntryPrice: fp(100), StopLoss: fp(95), ExitPrice: fp(110), Result: domain.ResultWin}

	if CalculateRR(long) != CalculateRR(short) {
		t.Errorf("expected equal RR, got long=%f short=%f", CalculateRR(long), CalculateRR(short))
	}
}

func TestCalculateTradingStats_Deterministic(t *testing.T) {
	trades := sequence("WWLBW-LW", 20, 15, -10, 0, 5, 3, -7, 12)
	trades[0].EntryPrice, trades[0].StopLoss, trades[0].ExitPrice = fp(100), fp(98), fp(104)

	first := CalculateTradingStats(trades, 1000)
	for run := 0; run < 5; run++ {
		again := CalculateTradingStats(trades, 1000)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d: stats differ\nfirst: %+v\nagain: %+v", run, first, again)
		}
	}
}

func TestCalculateTradingStats_Empty(t *testing.T) {
	stats := CalculateTradingStats(nil, 0)

	if stats.TotalTrades != 0 || stats.WinRate != 0 || stats.ProfitFactor != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
	assertNoNaN(t, stats)

	if !reflect.DeepEqual(stats, domain.TradingStats{}) {
		t.Errorf("expected zero value, got %+v", stats)
	}
}

func TestCalculateTradingStats_ProfitFactor(t *testing.T) {
	t.Run("all winners is unbounded", func(t *testing.T) {
		stats := CalculateTradingStats(sequence("WW", 10, 20), 0)
		if !math.IsInf(stats.ProfitFactor, 1) {
			t.Errorf("expected +Inf, got %f", stats.ProfitFactor)
		}
		if !stats.ProfitFactorUnbounded() {
			t.Error("expected ProfitFactorUnbounded")
		}
	})

	t.Run("all losers is zero", func(t *testing.T) {
		stats := CalculateTradingStats(sequence("LL", -10, -20), 0)
		if stats.ProfitFactor != 0 {
			t.Errorf("expected 0, got %f", stats.ProfitFactor)
		}
	})

	t.Run("30 over 10 is 3", func(t *testing.T) {
		stats := CalculateTradingStats(sequence("WWL", 20, 10, -10), 0)
		if stats.ProfitFactor != 3 {
			t.Errorf("expected 3, got %f", stats.ProfitFactor)
		}
	})

	t.Run("only breakevens is zero", func(t *testing.T) {
		stats := CalculateTradingStats(sequence("BB", 0, 0), 0)
		if stats.ProfitFactor != 0 {
			t.Errorf("expected 0, got %f", stats.ProfitFactor)
		}
		assertNoNaN(t, stats)
	})
}

func TestCalculateTradingStats_Counts(t *testing.T) {
	// Result-less trade counts toward total and P&L but no bucket
	trades := sequence("WWL-", 20, 10, -10, 5)
	stats := CalculateTradingStats(trades, 0)

	if stats.TotalTrades != 4 {
		t.Errorf("TotalTrades = %d, want 4", stats.TotalTrades)
	}
	if stats.WinningTrades != 2 || stats.LosingTrades != 1 || stats.BreakevenTrades != 0 {
		t.Errorf("buckets = %d/%d/%d, want 2/1/0", stats.WinningTrades, stats.LosingTrades, stats.BreakevenTrades)
	}
	if stats.WinRate != 50 {
		t.Errorf("WinRate = %f, want 50", stats.WinRate)
	}
	if stats.TotalPnl != 25 {
		t.Errorf("TotalPnl = %f, want 25", stats.TotalPnl)
	}
	if stats.AvgPnl != 6.25 {
		t.Errorf("AvgPnl = %f, want 6.25", stats.AvgPnl)
	}
}

func TestCalculateTradingStats_PnlBreakdown(t *testing.T) {
	trades := sequence("WWLL", 20, 10, -10, -30)
	stats := CalculateTradingStats(trades, 0)

	if stats.GrossProfit != 30 {
		t.Errorf("GrossProfit = %f, want 30", stats.GrossProfit)
	}
	if stats.GrossLoss != 40 {
		t.Errorf("GrossLoss = %f, want 40", stats.GrossLoss)
	}
	if stats.AvgWin != 15 || stats.AvgLoss != 20 {
		t.Errorf("AvgWin/AvgLoss = %f/%f, want 15/20", stats.AvgWin, stats.AvgLoss)
	}
	if stats.LargestWin != 20 || stats.LargestLoss != 30 {
		t.Errorf("LargestWin/LargestLoss = %f/%f, want 20/30", stats.LargestWin, stats.LargestLoss)
	}
	// 0.5*15 - 0.5*20
	if !approx(stats.Expectancy, -2.5) {
		t.Errorf("Expectancy = %f, want -2.5", stats.Expectancy)
	}
}

func TestCalculateTradingStats_Expectancy(t *testing.T) {
	stats := CalculateTradingStats(sequence("WWL", 20, 10, -10), 0)

	// 2/3*15 - 1/3*10
	want := 2.0/3.0*15 - 1.0/3.0*10
	if !approx(stats.Expectancy, want) {
		t.Errorf("Expectancy = %f, want %f", stats.Expectancy, want)
	}
}

func TestCalculateTradingStats_AvgRRExcludesZero(t *testing.T) {
	trades := sequence("WLW", 10, -5, 3)
	// 2R win
	trades[0].EntryPrice, trades[0].StopLoss, trades[0].ExitPrice = fp(100), fp(95), fp(110)
	// -1R loss
	trades[1].EntryPrice, trades[1].StopLoss, trades[1].ExitPrice = fp(100), fp(95), fp(95)
	// no stop: excluded
	trades[2].EntryPrice, trades[2].ExitPrice = fp(100), fp(103)

	stats := CalculateTradingStats(trades, 0)
	if !approx(stats.AvgRR, 1.5) {
		t.Errorf("AvgRR = %f, want 1.5", stats.AvgRR)
	}
}

func TestCalculateTradingStats_MaxDrawdown(t *testing.T) {
	stats := CalculateTradingStats(sequence("WLL", 20, -15, -10), 100)

	if stats.MaxDrawdown != 25 {
		t.Errorf("MaxDrawdown = %f, want 25", stats.MaxDrawdown)
	}
	// 25 / (100 + 20) * 100
	if !approx(stats.MaxDrawdownPercent, 25.0/120.0*100) {
		t.Errorf("MaxDrawdownPercent = %f, want %f", stats.MaxDrawdownPercent, 25.0/120.0*100)
	}
}

func TestCalculateTradingStats_MaxDrawdownUnsortedInput(t *testing.T) {
	trades := sequence("WLL", 20, -15, -10)
	shuffled := []*domain.TradeRecord{trades[2], trades[0], trades[1]}

	stats := CalculateTradingStats(shuffled, 0)
	if stats.MaxDrawdown != 25 {
		t.Errorf("MaxDrawdown = %f, want 25", stats.MaxDrawdown)
	}
	if shuffled[0].ID != trades[2].ID {
		t.Error("input slice was reordered")
	}
}

func TestCalculateTradingStats_MaxDrawdownPercent(t *testing.T) {
	t.Run("capped at 100", func(t *testing.T) {
		// denominator 0 + 20, drawdown 25 => 125% capped
		stats := CalculateTradingStats(sequence("WLL", 20, -15, -10), 0)
		if stats.MaxDrawdownPercent != 100 {
			t.Errorf("MaxDrawdownPercent = %f, want 100", stats.MaxDrawdownPercent)
		}
	})

	t.Run("zero denominator", func(t *testing.T) {
		// peak stays 0, initial balance 0
		stats := CalculateTradingStats(sequence("LL", -5, -5), 0)
		if stats.MaxDrawdown != 10 {
			t.Errorf("MaxDrawdown = %f, want 10", stats.MaxDrawdown)
		}
		if stats.MaxDrawdownPercent != 0 {
			t.Errorf("MaxDrawdownPercent = %f, want 0", stats.MaxDrawdownPercent)
		}
	})
}

func TestCalculateTradingStats_Sharpe(t *testing.T) {
	tests := []struct {
		name string
		pnls []float64
		want float64
	}{
		{"zero variance", []float64{10, 10}, 0},
		{"zero mean", []float64{10, -10}, 0},
		// mean 10, population stddev 20
		{"population variance", []float64{30, -10}, 0.5 * math.Sqrt(252)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := CalculateTradingStats(sequence("WL", tt.pnls...), 0)
			if !approx(stats.SharpeRatio, tt.want) {
				t.Errorf("SharpeRatio = %f, want %f", stats.SharpeRatio, tt.want)
			}
		})
	}
}

func TestCalculateTradingStats_ConsecutiveStreaks(t *testing.T) {
	tests := []struct {
		pattern    string
		wantWins   int
		wantLosses int
	}{
		{"WWL", 2, 1},
		{"WWBW", 2, 0},
		{"LL-LLL", 0, 3},
		{"WLWLW", 1, 1},
		{"BBB", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			pnls := make([]float64, len(tt.pattern))
			stats := CalculateTradingStats(sequence(tt.pattern, pnls...), 0)
			if stats.ConsecutiveWins != tt.wantWins || stats.ConsecutiveLosses != tt.wantLosses {
				t.Errorf("streaks = %d/%d, want %d/%d",
					stats.ConsecutiveWins, stats.ConsecutiveLosses, tt.wantWins, tt.wantLosses)
			}
		})
	}
}

func TestCalculateTradingStats_ManualPnlFallback(t *testing.T) {
	trades := sequence("WL", 0, 0)
	trades[0].RealizedPnl, trades[0].Pnl = nil, fp(40)
	trades[1].RealizedPnl, trades[1].Pnl = nil, nil

	stats := CalculateTradingStats(trades, 0)
	if stats.TotalPnl != 40 {
		t.Errorf("TotalPnl = %f, want 40", stats.TotalPnl)
	}
	if !math.IsInf(stats.ProfitFactor, 1) {
		t.Errorf("ProfitFactor = %f, want +Inf", stats.ProfitFactor)
	}
}

func assertNoNaN(t *testing.T, stats domain.TradingStats) {
	t.Helper()
	v := reflect.ValueOf(stats)
	for i := 0; i < v.NumField(); i++ {
		if f := v.Field(i); f.Kind() == reflect.Float64 && math.IsNaN(f.Float()) {
			t.Errorf("field %s is NaN", v.Type().Field(i).Name)
		}
	}
}
