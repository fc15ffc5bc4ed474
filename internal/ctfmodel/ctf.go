package ctfmodel

import (
	"sync"

	"github.com/Attacking-Lab/scoring-playground/internal/logging"
)

// FlagStateEstimator computes a best-effort FlagState for every flag, in
// every round, from the recorded service states. It lives in package
// flagstate so that ctfmodel stays a leaf package; CTF only holds the
// memoization around a call to one.
type FlagStateEstimator func(*CTF) []map[FlagId]FlagState

// CTF is a fully decoded recording of an attack/defense CTF: its services,
// teams, and the sequence of per-round snapshots. Once constructed, a CTF's
// rounds/teams/services/config never change; derived views (flagstores,
// flags, flag_captures, flag_states) are computed on first access and
// cached for the lifetime of the value.
type CTF struct {
	Services *OrderedMap[*Service]
	Teams    []TeamName
	Rounds   []*OrderedMap[*TeamRoundData]
	Config   Config

	// FlagStatesInput carries flag_states straight from the input document,
	// when present; when nil, FlagStates estimates them on first access.
	FlagStatesInput []map[FlagId]FlagState

	flagstoresOnce  sync.Once
	flagstoresCache []ServiceFlagStoreKey

	flagsOnce  sync.Once
	flagsCache map[FlagId]Flag

	flagCapturesOnce  sync.Once
	flagCapturesCache map[FlagId]*FlagCaptures

	flagStatesOnce  sync.Once
	flagStatesCache []map[FlagId]FlagState
}

// Enumerate returns (round id, round data) pairs in round order.
func (c *CTF) Enumerate() []struct {
	RoundID RoundId
	Data    *OrderedMap[*TeamRoundData]
} {
	out := make([]struct {
		RoundID RoundId
		Data    *OrderedMap[*TeamRoundData]
	}, len(c.Rounds))
	for i, r := range c.Rounds {
		out[i] = struct {
			RoundID RoundId
			Data    *OrderedMap[*TeamRoundData]
		}{RoundId(i), r}
	}
	return out
}

// Flagstores returns every (service, flagstore) pair declared across all
// services, in service-declaration then flagstore-declaration order.
func (c *CTF) Flagstores() []ServiceFlagStoreKey {
	c.flagstoresOnce.Do(func() {
		var out []ServiceFlagStoreKey
		c.Services.Range(func(name string, svc *Service) {
			for _, fs := range svc.FlagStores {
				out = append(out, ServiceFlagStoreKey{Service: ServiceName(name), FlagStore: fs})
			}
		})
		c.flagstoresCache = out
	})
	return c.flagstoresCache
}

// Flags collects every flag ever placed by the checker, indexed by id.
func (c *CTF) Flags() map[FlagId]Flag {
	c.flagsOnce.Do(func() {
		out := make(map[FlagId]Flag)
		for roundID, round := range c.Rounds {
			round.Range(func(teamKey string, data *TeamRoundData) {
				if data.FlagsStored == nil {
					return
				}
				data.FlagsStored.Range(func(serviceKey string, perStore *OrderedMap[FlagId]) {
					perStore.Range(func(storeKey string, flagID FlagId) {
						out[flagID] = Flag{
							ID:        flagID,
							RoundID:   RoundId(roundID),
							Owner:     TeamName(teamKey),
							Service:   ServiceName(serviceKey),
							FlagStore: parseFlagStoreId(storeKey),
						}
					})
				})
			})
		}
		c.flagsCache = out
	})
	return c.flagsCache
}

// FlagCaptures collects, for every flag, how often and in which rounds it
// was captured, and by whom.
func (c *CTF) FlagCaptures() map[FlagId]*FlagCaptures {
	c.flagCapturesOnce.Do(func() {
		out := make(map[FlagId]*FlagCaptures)
		for roundID, round := range c.Rounds {
			round.Range(func(teamKey string, data *TeamRoundData) {
				for _, flagID := range data.FlagsCaptured {
					fc, ok := out[flagID]
					if !ok {
						fc = newFlagCaptures()
						out[flagID] = fc
					}
					fc.Count++
					fc.By[RoundId(roundID)] = append(fc.By[RoundId(roundID)], TeamName(teamKey))
				}
			})
		}
		c.flagCapturesCache = out
	})
	return c.flagCapturesCache
}

// FlagStates returns, per round, the estimated or recorded availability of
// every flag checked that round. When the input document carried explicit
// flag_states they are returned as-is; otherwise estimate is invoked once
// and a warning is logged, exactly once per CTF value (a fresh value
// produced by Slice warns again on its own first access).
func (c *CTF) FlagStates(estimate FlagStateEstimator) []map[FlagId]FlagState {
	c.flagStatesOnce.Do(func() {
		if c.FlagStatesInput != nil {
			c.flagStatesCache = c.FlagStatesInput
			return
		}
		logging.Log.Warn("estimating flag availability from service states; this may be inaccurate")
		c.flagStatesCache = estimate(c)
	})
	return c.flagStatesCache
}

// Slice returns the sub-range [from, to) of rounds as an independent CTF
// value with its own, freshly-unmemoized derived indices — mirroring
// Python's rounds[from:to] plus a cache reset in the original.
func (c *CTF) Slice(from, to int) *CTF {
	if from < 0 {
		from = 0
	}
	if to > len(c.Rounds) {
		to = len(c.Rounds)
	}
	if from > to {
		from = to
	}
	sliced := &CTF{
		Services: c.Services,
		Teams:    c.Teams,
		Rounds:   c.Rounds[from:to],
		Config:   c.Config,
	}
	if c.FlagStatesInput != nil {
		end := to
		if end > len(c.FlagStatesInput) {
			end = len(c.FlagStatesInput)
		}
		start := from
		if start > end {
			start = end
		}
		sliced.FlagStatesInput = c.FlagStatesInput[start:end]
	}
	return sliced
}
