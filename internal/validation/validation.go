// Package validation checks the structural invariants a decoded CTF must
// satisfy before any scoring formula can be trusted to run against it. It
// depends only on ctfmodel, never on flagstate/scorealg/scoring, to keep the
// same narrow, cycle-free shape the teacher used for its own ID validators.
package validation

import (
	"fmt"

	"github.com/Attacking-Lab/scoring-playground/internal/ctfmodel"
)

// Shape runs every structural check against ctf and returns the first
// violation found, or nil if the CTF is well-formed.
func Shape(ctf *ctfmodel.CTF) error {
	checks := []func(*ctfmodel.CTF) error{
		checkPositivePeriods,
		checkRoundContiguity,
		checkFlagstoreMembership,
		checkDanglingFlagIds,
	}
	for _, check := range checks {
		if err := check(ctf); err != nil {
			return err
		}
	}
	return nil
}

func checkPositivePeriods(ctf *ctfmodel.CTF) error {
	if ctf.Config.FlagValidityPeriod() <= 0 {
		return &ctfmodel.ShapeError{
			Field:  "config.flag_validity",
			Value:  ctf.Config.FlagValidityPeriod(),
			Reason: "must be positive",
		}
	}
	if ctf.Config.FlagRetentionPeriod() <= 0 {
		return &ctfmodel.ShapeError{
			Field:  "config.flag_retention",
			Value:  ctf.Config.FlagRetentionPeriod(),
			Reason: "must be positive",
		}
	}
	return nil
}

func checkRoundContiguity(ctf *ctfmodel.CTF) error {
	teams := make(map[ctfmodel.TeamName]struct{}, len(ctf.Teams))
	for _, t := range ctf.Teams {
		teams[t] = struct{}{}
	}
	for i, round := range ctf.Rounds {
		for _, key := range round.Keys() {
			if _, ok := teams[ctfmodel.TeamName(key)]; !ok {
				return &ctfmodel.ShapeError{
					Field:  "rounds[].team",
					Value:  key,
					Reason: fmt.Sprintf("round %d references team %q not declared in teams", i, key),
				}
			}
		}
	}
	return nil
}

func checkFlagstoreMembership(ctf *ctfmodel.CTF) error {
	validStores := make(map[ctfmodel.ServiceFlagStoreKey]struct{})
	for _, sfs := range ctf.Flagstores() {
		validStores[sfs] = struct{}{}
	}
	for roundID, round := range ctf.Rounds {
		for _, teamKey := range round.Keys() {
			data, _ := round.Get(teamKey)
			if data == nil || data.FlagsStored == nil {
				continue
			}
			for _, sfs := range flagStoreKeysOf(data) {
				if _, ok := validStores[sfs]; !ok {
					return &ctfmodel.ShapeError{
						Field:  "flags_stored",
						Value:  sfs,
						Reason: fmt.Sprintf("round %d team %q stores a flag in an undeclared flagstore", roundID, teamKey),
					}
				}
			}
		}
	}
	return nil
}

func flagStoreKeysOf(data *ctfmodel.TeamRoundData) []ctfmodel.ServiceFlagStoreKey {
	keys := make([]ctfmodel.ServiceFlagStoreKey, 0)
	for k := range data.AllStoredFlags() {
		keys = append(keys, k)
	}
	return keys
}

// checkDanglingFlagIds enforces spec invariant 1: every FlagId referenced
// from flags_captured or flag_states must appear in flags.
func checkDanglingFlagIds(ctf *ctfmodel.CTF) error {
	flags := ctf.Flags()
	for roundID, round := range ctf.Rounds {
		for _, teamKey := range round.Keys() {
			data, _ := round.Get(teamKey)
			if data == nil {
				continue
			}
			for _, flagID := range data.FlagsCaptured {
				if _, ok := flags[flagID]; !ok {
					return &ctfmodel.ShapeError{
						Field:  "flags_captured",
						Value:  flagID,
						Reason: fmt.Sprintf("round %d team %q captured a flag id that was never placed", roundID, teamKey),
					}
				}
			}
		}
	}
	for roundID, roundStates := range ctf.FlagStatesInput {
		for flagID := range roundStates {
			if _, ok := flags[flagID]; !ok {
				return &ctfmodel.ShapeError{
					Field:  "flag_states",
					Value:  flagID,
					Reason: fmt.Sprintf("round %d references a flag id that was never placed", roundID),
				}
			}
		}
	}
	return nil
}
