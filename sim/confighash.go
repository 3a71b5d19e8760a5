package sim

import (
	"encoding/hex"
	"encoding/json"
	"hash/fnv"

	"github.com/raykavin/backtestkernel/strategy"
)

// hashInput is the canonical payload configHash digests: the strategy's
// entry/exit ASTs (marshaled structurally, not as source text, since the
// kernel never holds the original expression string) plus the run
// window. json.Marshal is used only as a deterministic byte encoding
// here, not for round-tripping — hash/fnv over it needs no third-party
// dependency, so this is the one place the module reaches for the
// standard library's hasher rather than an ecosystem one.
type hashInput struct {
	EntryAst   any
	ExitZones  []strategy.ExitZone
	Symbol     string
	Resolution string
	StartMs    int64
	EndMs      int64
}

// ConfigHash computes a stable FNV-1a digest over a run's defining
// configuration, used to detect when two BacktestResults were produced
// by an identical (strategy, window) pair.
func ConfigHash(s strategy.Strategy, cfg BacktestConfig) string {
	in := hashInput{
		EntryAst:   s.EntryAst,
		ExitZones:  s.ExitZones,
		Symbol:     cfg.Symbol,
		Resolution: cfg.Resolution,
		StartMs:    cfg.StartDate.UnixMilli(),
		EndMs:      cfg.EndDate.UnixMilli(),
	}
	data, err := json.Marshal(in)
	if err != nil {
		data = []byte(s.ID)
	}

	h := fnv.New64a()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
