package metrics

import "trade-journal/internal/domain"

// run is a streak under construction; start and end index the sorted trades.
type run struct {
	typ        domain.StreakType
	start, end int
}

func (r run) length() int { return r.end - r.start + 1 }

// streakTypeOf maps a result to a streak type. Breakeven and unset results
// belong to no streak.
func streakTypeOf(r domain.Result) (domain.StreakType, bool) {
	switch r {
	case domain.ResultWin:
		return domain.StreakWin, true
	case domain.ResultLoss:
		return domain.StreakLoss, true
	default:
		return "", false
	}
}

// AnalyzeStreaks segments trades (sorted by TradeDate ASC) into win and loss
// runs and computes distribution, P&L and recovery metrics over them.
// A breakeven or result-less trade ends the current run without starting one.
func AnalyzeStreaks(trades []*domain.TradeRecord) domain.StreakAnalysis {
	sorted := sortedByDate(trades)
	runs := collectRuns(sorted)

	analysis := domain.StreakAnalysis{
		WinStreakDistribution:  make(map[int]int),
		LossStreakDistribution: make(map[int]int),
		Streaks:                make([]domain.StreakRecord, len(runs)),
	}
	if len(sorted) == 0 {
		return analysis
	}

	for i, r := range runs {
		analysis.Streaks[i] = buildStreakRecord(sorted, r)
	}

	// Current streak: the run ending at the most recent trade.
	if n := len(runs); n > 0 && runs[n-1].end == len(sorted)-1 {
		rec := analysis.Streaks[n-1]
		analysis.CurrentStreak = &rec
	}

	var winLenSum, lossLenSum, winRuns, lossRuns int
	var winStreakPnl, lossStreakPnl, basePnl float64
	var winStreakTrades, lossStreakTrades, baseCount int
	longestWin, longestLoss := -1, -1

	for i, r := range runs {
		l := r.length()
		pnl := analysis.Streaks[i].TotalPnl

		switch r.typ {
		case domain.StreakWin:
			analysis.WinStreakDistribution[l]++
			winLenSum += l
			winRuns++
			if longestWin < 0 || l > runs[longestWin].length() {
				longestWin = i
			}
			if l >= 2 {
				winStreakPnl += pnl
				winStreakTrades += l
			}
		case domain.StreakLoss:
			analysis.LossStreakDistribution[l]++
			lossLenSum += l
			lossRuns++
			if longestLoss < 0 || l > runs[longestLoss].length() {
				longestLoss = i
			}
			if l >= 2 {
				lossStreakPnl += pnl
				lossStreakTrades += l
			}
		}

		if l == 1 {
			basePnl += pnl
			baseCount++
		}
	}

	if longestWin >= 0 {
		rec := analysis.Streaks[longestWin]
		analysis.LongestWinStreak = &rec
	}
	if longestLoss >= 0 {
		rec := analysis.Streaks[longestLoss]
		analysis.LongestLossStreak = &rec
	}

	analysis.AvgWinStreakLength = safeDiv(float64(winLenSum), winRuns)
	analysis.AvgLossStreakLength = safeDiv(float64(lossLenSum), lossRuns)
	analysis.AvgPnlDuringWinStreaks = safeDiv(winStreakPnl, winStreakTrades)
	analysis.AvgPnlDuringLossStreaks = safeDiv(lossStreakPnl, lossStreakTrades)
	analysis.AvgPnlBaseline = safeDiv(basePnl, baseCount)
	analysis.AvgRecoveryTrades, analysis.RecoveredStreaks = computeRecovery(sorted, runs)

	return analysis
}

// collectRuns walks sorted trades once and returns maximal same-type runs.
func collectRuns(sorted []*domain.TradeRecord) []run {
	var (
		runs []run
		cur  *run
	)
	for i, t := range sorted {
		typ, ok := streakTypeOf(t.Result)
		if !ok {
			if cur != nil {
				runs = append(runs, *cur)
				cur = nil
			}
			continue
		}
		if cur != nil && cur.typ == typ {
			cur.end = i
			continue
		}
		if cur != nil {
			runs = append(runs, *cur)
		}
		cur = &run{typ: typ, start: i, end: i}
	}
	if cur != nil {
		runs = append(runs, *cur)
	}
	return runs
}

func buildStreakRecord(sorted []*domain.TradeRecord, r run) domain.StreakRecord {
	rec := domain.StreakRecord{
		Type:      r.typ,
		Length:    r.length(),
		StartDate: sorted[r.start].TradeDate,
		EndDate:   sorted[r.end].TradeDate,
	}
	seen := make(map[string]struct{})
	for _, t := range sorted[r.start : r.end+1] {
		rec.TotalPnl += NetPnl(t)
		if _, ok := seen[t.Pair]; !ok {
			seen[t.Pair] = struct{}{}
			rec.Pairs = append(rec.Pairs, t.Pair)
		}
	}
	return rec
}

// computeRecovery counts, for each loss run, the trades after the run until
// cumulative net P&L is back at its level from before the run started.
// A run whose end already sits at that level recovers in 0 trades.
// Runs that never recover are excluded from the mean.
func computeRecovery(sorted []*domain.TradeRecord, runs []run) (float64, int) {
	// cum[i] is cumulative net P&L after trade i; cum[-1] is 0.
	cum := make([]float64, len(sorted))
	total := 0.0
	for i, t := range sorted {
		total += NetPnl(t)
		cum[i] = total
	}
	before := func(i int) float64 {
		if i == 0 {
			return 0
		}
		return cum[i-1]
	}

	sum, recovered := 0, 0
	for _, r := range runs {
		if r.typ != domain.StreakLoss {
			continue
		}
		level := before(r.start)
		if cum[r.end] >= level {
			recovered++
			continue
		}
		for j := r.end + 1; j < len(sorted); j++ {
			if cum[j] >= level {
				sum += j - r.end
				recovered++
				break
			}
		}
	}
	return safeDiv(float64(sum), recovered), recovered
}
