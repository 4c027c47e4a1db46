package metrics

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"time"

	"trade-journal/internal/domain"
)

// ContentKey derives a cache key from the full content of a trade collection
// and the initial balance. Any change to any field of any trade, or to the
// order of trades, yields a different key. Absent optional values hash
// differently from zero values.
func ContentKey(trades []*domain.TradeRecord, initialBalance float64) string {
	h := sha256.New()
	w := keyWriter{h: h}

	w.float(initialBalance)
	w.int(int64(len(trades)))
	for _, t := range trades {
		w.trade(t)
	}

	return hex.EncodeToString(h.Sum(nil))
}

type keyWriter struct {
	h   hash.Hash
	buf [8]byte
}

func (w *keyWriter) trade(t *domain.TradeRecord) {
	w.str(t.ID)
	w.str(t.UserID)
	w.str(t.Pair)
	w.str(string(t.Direction))
	w.optFloat(t.EntryPrice)
	w.optFloat(t.ExitPrice)
	w.optFloat(t.StopLoss)
	w.optFloat(t.TakeProfit)
	w.float(t.Quantity)
	w.optFloat(t.RealizedPnl)
	w.optFloat(t.Pnl)
	w.str(string(t.Result))
	w.str(string(t.Status))
	w.time(&t.TradeDate)
	w.time(t.EntryTime)
	w.time(t.ExitTime)
	w.int(int64(len(t.Strategies)))
	for _, s := range t.Strategies {
		w.str(s.ID)
		w.str(s.Name)
	}
	w.optFloat(t.ConfluenceScore)
	w.optFloat(t.AIQualityScore)
	w.str(t.Notes)
}

func (w *keyWriter) int(v int64) {
	binary.BigEndian.PutUint64(w.buf[:], uint64(v))
	w.h.Write(w.buf[:])
}

func (w *keyWriter) float(v float64) {
	binary.BigEndian.PutUint64(w.buf[:], math.Float64bits(v))
	w.h.Write(w.buf[:])
}

// str is length-prefixed so adjacent fields cannot collide.
func (w *keyWriter) str(s string) {
	w.int(int64(len(s)))
	w.h.Write([]byte(s))
}

func (w *keyWriter) optFloat(v *float64) {
	if v == nil {
		w.h.Write([]byte{0})
		return
	}
	w.h.Write([]byte{1})
	w.float(*v)
}

func (w *keyWriter) time(v *time.Time) {
	if v == nil {
		w.h.Write([]byte{0})
		return
	}
	w.h.Write([]byte{1})
	w.int(v.Unix())
	w.int(int64(v.Nanosecond()))
}
