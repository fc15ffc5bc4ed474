// Package ctfmodel holds the data model of a recorded CTF: its services,
// teams, per-round snapshots and flag placements. It is the leaf package of
// the engine — every other package (flagstate, scorealg, scoring, registry)
// depends on it, never the reverse.
package ctfmodel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlagId identifies a single flag placement.
type FlagId int

// FlagStoreId identifies one of a service's flagstores.
type FlagStoreId int

// RoundId identifies a round, 0-indexed.
type RoundId int

// ServiceName names a checked service.
type ServiceName string

// TeamName names a competing team.
type TeamName string

// ServiceState is the checker-reported state of a service for one team in
// one round.
type ServiceState int

const (
	ServiceStateOK ServiceState = iota
	ServiceStateRecovering
	ServiceStateMumble
	ServiceStateOffline
	ServiceStateError
)

func (s ServiceState) String() string {
	switch s {
	case ServiceStateOK:
		return "OK"
	case ServiceStateRecovering:
		return "RECOVERING"
	case ServiceStateMumble:
		return "MUMBLE"
	case ServiceStateOffline:
		return "OFFLINE"
	case ServiceStateError:
		return "ERROR"
	default:
		return fmt.Sprintf("ServiceState(%d)", int(s))
	}
}

func parseServiceState(s string) (ServiceState, bool) {
	switch s {
	case "OK":
		return ServiceStateOK, true
	case "RECOVERING":
		return ServiceStateRecovering, true
	case "MUMBLE":
		return ServiceStateMumble, true
	case "OFFLINE":
		return ServiceStateOffline, true
	case "ERROR":
		return ServiceStateError, true
	default:
		return 0, false
	}
}

func (s ServiceState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ServiceState) UnmarshalJSON(raw []byte) error {
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return err
	}
	v, ok := parseServiceState(str)
	if !ok {
		return &InputDecodeError{Field: "service_states", Value: str, Reason: "not a recognized service state"}
	}
	*s = v
	return nil
}

// FlagState is the estimated or recorded availability of a single flag in a
// single round.
type FlagState int

const (
	FlagStateOK FlagState = iota
	FlagStateMissing
)

func (s FlagState) String() string {
	switch s {
	case FlagStateOK:
		return "OK"
	case FlagStateMissing:
		return "MISSING"
	default:
		return fmt.Sprintf("FlagState(%d)", int(s))
	}
}

func parseFlagState(s string) (FlagState, bool) {
	switch s {
	case "OK":
		return FlagStateOK, true
	case "MISSING":
		return FlagStateMissing, true
	default:
		return 0, false
	}
}

func (s FlagState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *FlagState) UnmarshalJSON(raw []byte) error {
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return err
	}
	v, ok := parseFlagState(str)
	if !ok {
		return &InputDecodeError{Field: "flag_states", Value: str, Reason: "not a recognized flag state"}
	}
	*s = v
	return nil
}

// Flag describes one flag placement: who owned it, where, and when.
type Flag struct {
	ID        FlagId
	RoundID   RoundId
	Owner     TeamName
	Service   ServiceName
	FlagStore FlagStoreId
}

// FlagCaptures records how often, and by whom, a single flag was captured.
type FlagCaptures struct {
	Count int
	By    map[RoundId][]TeamName
}

func newFlagCaptures() *FlagCaptures {
	return &FlagCaptures{By: make(map[RoundId][]TeamName)}
}

// CountBefore returns the number of captures strictly before target.
func (fc *FlagCaptures) CountBefore(target RoundId) int {
	n := 0
	for r, attackers := range fc.By {
		if r < target {
			n += len(attackers)
		}
	}
	return n
}

// CountIn returns the number of captures within exactly target.
func (fc *FlagCaptures) CountIn(target RoundId) int {
	return len(fc.By[target])
}

// CountIncluding returns the number of captures at or before target.
func (fc *FlagCaptures) CountIncluding(target RoundId) int {
	n := 0
	for r, attackers := range fc.By {
		if r <= target {
			n += len(attackers)
		}
	}
	return n
}

// Service is the static metadata of a checked service.
type Service struct {
	FlagStores []FlagStoreId
	// FlagRate defaults to len(FlagStores) when unset — "normal" CTFs place
	// one flag per flagstore per round.
	FlagRate    float64
	flagRateSet bool
}

func (s *Service) effectiveFlagRate() float64 {
	if s.flagRateSet {
		return s.FlagRate
	}
	return float64(len(s.FlagStores))
}

// EffectiveFlagRate returns the configured FlagRate, or len(FlagStores) when
// it was not set explicitly in the input.
func (s *Service) EffectiveFlagRate() float64 {
	return s.effectiveFlagRate()
}

type serviceJSON struct {
	FlagStores []FlagStoreId `json:"flagstores"`
	FlagRate   *float64      `json:"flag_rate,omitempty"`
}

func (s *Service) UnmarshalJSON(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var j serviceJSON
	if err := dec.Decode(&j); err != nil {
		return fmt.Errorf("ctfmodel: decoding service: %w", err)
	}
	s.FlagStores = j.FlagStores
	if j.FlagRate != nil {
		s.FlagRate = *j.FlagRate
		s.flagRateSet = true
	}
	return nil
}

func (s Service) MarshalJSON() ([]byte, error) {
	j := serviceJSON{FlagStores: s.FlagStores}
	if s.flagRateSet {
		j.FlagRate = &s.FlagRate
	}
	return json.Marshal(j)
}

// TeamRoundData is one team's recorded state for one round.
type TeamRoundData struct {
	ServiceStates map[ServiceName]ServiceState
	FlagsStored   *OrderedMap[*OrderedMap[FlagId]]
	FlagsCaptured []FlagId
}

// ServiceFlagStoreKey identifies a single flagstore of a single service.
type ServiceFlagStoreKey struct {
	Service   ServiceName
	FlagStore FlagStoreId
}

// AllStoredFlags flattens FlagsStored into a (service, flagstore) -> flagId
// map, mirroring the original's cached `all_stored_flags` view.
func (t *TeamRoundData) AllStoredFlags() map[ServiceFlagStoreKey]FlagId {
	out := make(map[ServiceFlagStoreKey]FlagId)
	if t.FlagsStored == nil {
		return out
	}
	t.FlagsStored.Range(func(service string, perStore *OrderedMap[FlagId]) {
		perStore.Range(func(store string, flagID FlagId) {
			out[ServiceFlagStoreKey{ServiceName(service), parseFlagStoreId(store)}] = flagID
		})
	})
	return out
}

func parseFlagStoreId(s string) FlagStoreId {
	n, _ := strconv.Atoi(s)
	return FlagStoreId(n)
}

// IterateStoredFlags yields every flag id this team has stored this round,
// across every service and flagstore.
func (t *TeamRoundData) IterateStoredFlags() []FlagId {
	var out []FlagId
	if t.FlagsStored == nil {
		return out
	}
	t.FlagsStored.Range(func(_ string, perStore *OrderedMap[FlagId]) {
		perStore.Range(func(_ string, flagID FlagId) {
			out = append(out, flagID)
		})
	})
	return out
}

type teamRoundDataJSON struct {
	ServiceStates map[ServiceName]ServiceState `json:"service_states"`
	FlagsStored   *OrderedMap[*OrderedMap[FlagId]] `json:"flags_stored"`
	FlagsCaptured []FlagId                         `json:"flags_captured"`
}

func (t *TeamRoundData) UnmarshalJSON(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var j teamRoundDataJSON
	if err := dec.Decode(&j); err != nil {
		return fmt.Errorf("ctfmodel: decoding round data: %w", err)
	}
	t.ServiceStates = j.ServiceStates
	t.FlagsStored = j.FlagsStored
	t.FlagsCaptured = j.FlagsCaptured
	return nil
}

// Config is the game-wide configuration carried with the CTF input.
type Config struct {
	FlagValidity int
	Messages     []string
	// FlagRetention defaults to FlagValidity when unset.
	FlagRetention    int
	flagRetentionSet bool
}

func (c *Config) effectiveFlagRetention() int {
	if c.flagRetentionSet {
		return c.FlagRetention
	}
	return c.FlagValidity
}

type configJSON struct {
	FlagValidity  int      `json:"flag_validity"`
	Messages      []string `json:"messages,omitempty"`
	FlagRetention *int     `json:"flag_retention,omitempty"`
}

func (c *Config) UnmarshalJSON(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var j configJSON
	if err := dec.Decode(&j); err != nil {
		return fmt.Errorf("ctfmodel: decoding config: %w", err)
	}
	c.FlagValidity = j.FlagValidity
	c.Messages = j.Messages
	if j.FlagRetention != nil {
		c.FlagRetention = *j.FlagRetention
		c.flagRetentionSet = true
	}
	return nil
}

func (c Config) MarshalJSON() ([]byte, error) {
	j := configJSON{FlagValidity: c.FlagValidity, Messages: c.Messages}
	if c.flagRetentionSet {
		j.FlagRetention = &c.FlagRetention
	}
	return json.Marshal(j)
}

// NewConfig builds a Config, with retention deferring to flagValidity when
// retention is nil — the exported equivalent of decoding a config object
// whose flag_retention key was absent.
func NewConfig(flagValidity int, retention *int, messages []string) Config {
	c := Config{FlagValidity: flagValidity, Messages: messages}
	if retention != nil {
		c.FlagRetention = *retention
		c.flagRetentionSet = true
	}
	return c
}

// FlagValidityPeriod returns Config.FlagValidity.
func (c Config) FlagValidityPeriod() int { return c.FlagValidity }

// FlagRetentionPeriod returns the effective flag_retention, defaulted from
// flag_validity when the input did not set it.
func (c Config) FlagRetentionPeriod() int { return c.effectiveFlagRetention() }
