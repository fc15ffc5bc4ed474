package ctfmodel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

type ctfJSON struct {
	Services   *OrderedMap[*Service]            `json:"services"`
	Teams      []TeamName                       `json:"teams"`
	Rounds     []*OrderedMap[*TeamRoundData]     `json:"rounds"`
	Config     Config                            `json:"config"`
	FlagStates []map[string]FlagState           `json:"flag_states,omitempty"`
}

// UnmarshalJSON decodes a CTF document, rejecting unknown top-level and
// nested fields and preserving the declaration order of `services` and the
// per-service flagstore tables of `flags_stored`.
func (c *CTF) UnmarshalJSON(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var j ctfJSON
	if err := dec.Decode(&j); err != nil {
		return fmt.Errorf("ctfmodel: decoding CTF: %w", err)
	}

	c.Services = j.Services
	c.Teams = j.Teams
	c.Rounds = j.Rounds
	c.Config = j.Config

	if j.FlagStates != nil {
		states := make([]map[FlagId]FlagState, len(j.FlagStates))
		for i, roundStates := range j.FlagStates {
			converted := make(map[FlagId]FlagState, len(roundStates))
			for key, state := range roundStates {
				id, err := strconv.Atoi(key)
				if err != nil {
					return &InputDecodeError{Field: "flag_states", Value: key, Reason: "flag id must be numeric"}
				}
				converted[FlagId(id)] = state
			}
			states[i] = converted
		}
		c.FlagStatesInput = states
	}

	return nil
}

// DecodeJSON reads a CTF document from r. It is the single entry point
// external callers (cmd/scoreplay, tests, data sources) use to turn raw
// input bytes into a *CTF.
func DecodeJSON(r io.Reader) (*CTF, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ctfmodel: reading input: %w", err)
	}
	ctf := &CTF{}
	if err := json.Unmarshal(raw, ctf); err != nil {
		return nil, err
	}
	return ctf, nil
}
