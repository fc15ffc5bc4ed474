// Package testhelpers provides small composable fixtures for building
// ctfmodel.CTF values in tests, without hand-writing JSON documents.
package testhelpers

import (
	"strconv"

	"github.com/Attacking-Lab/scoring-playground/internal/ctfmodel"
)

// TeamRound describes one team's recorded state for one round, in terms a
// test can write out directly.
type TeamRound struct {
	States   map[string]ctfmodel.ServiceState
	Stored   map[string]map[int]int // service -> flagstore -> flag id
	Captured []int
}

// Builder accumulates services, teams and rounds and emits a ctfmodel.CTF.
type Builder struct {
	services     *ctfmodel.OrderedMap[*ctfmodel.Service]
	teams        []ctfmodel.TeamName
	rounds       []*ctfmodel.OrderedMap[*ctfmodel.TeamRoundData]
	flagValidity int
	retention    int
	messages     []string
}

// NewBuilder returns an empty Builder with a flag_validity of 1 (every flag
// counts for exactly the round it was placed, unless overridden).
func NewBuilder() *Builder {
	return &Builder{
		services:     ctfmodel.NewOrderedMap[*ctfmodel.Service](),
		flagValidity: 1,
	}
}

// Service declares a service with the given flagstore ids, in declaration
// order.
func (b *Builder) Service(name string, flagstores ...int) *Builder {
	stores := make([]ctfmodel.FlagStoreId, len(flagstores))
	for i, fs := range flagstores {
		stores[i] = ctfmodel.FlagStoreId(fs)
	}
	b.services.Set(name, &ctfmodel.Service{FlagStores: stores})
	return b
}

// Team declares a competing team, in declaration order.
func (b *Builder) Team(name string) *Builder {
	b.teams = append(b.teams, ctfmodel.TeamName(name))
	return b
}

// Config sets the game configuration. retention of 0 defers to validity.
func (b *Builder) Config(flagValidity, retention int, messages ...string) *Builder {
	b.flagValidity = flagValidity
	b.retention = retention
	b.messages = messages
	return b
}

// Round appends a new round built from per-team data, keyed by team name.
// Teams not present in data are omitted from the round (useful for
// simulating teams that joined late or dropped out).
func (b *Builder) Round(data map[string]TeamRound) *Builder {
	round := ctfmodel.NewOrderedMap[*ctfmodel.TeamRoundData]()
	for _, team := range b.teams {
		tr, ok := data[string(team)]
		if !ok {
			continue
		}
		stored := ctfmodel.NewOrderedMap[*ctfmodel.OrderedMap[ctfmodel.FlagId]]()
		for service, byStore := range tr.Stored {
			perStore := ctfmodel.NewOrderedMap[ctfmodel.FlagId]()
			for store, flagID := range byStore {
				perStore.Set(itoa(store), ctfmodel.FlagId(flagID))
			}
			stored.Set(service, perStore)
		}
		captured := make([]ctfmodel.FlagId, len(tr.Captured))
		for i, f := range tr.Captured {
			captured[i] = ctfmodel.FlagId(f)
		}
		round.Set(string(team), &ctfmodel.TeamRoundData{
			ServiceStates: tr.States,
			FlagsStored:   stored,
			FlagsCaptured: captured,
		})
	}
	b.rounds = append(b.rounds, round)
	return b
}

// Build materializes the accumulated fixture as a *ctfmodel.CTF.
func (b *Builder) Build() *ctfmodel.CTF {
	var retention *int
	if b.retention > 0 {
		retention = &b.retention
	}
	return &ctfmodel.CTF{
		Services: b.services,
		Teams:    b.teams,
		Rounds:   b.rounds,
		Config:   ctfmodel.NewConfig(b.flagValidity, retention, b.messages),
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
