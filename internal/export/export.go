// Package export writes simulated rounds as a single JSON document and checks
// documents against the schema they are published with.
package export

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/phil-holland/spike-round-sim/internal/impact"
	"github.com/phil-holland/spike-round-sim/internal/legacy"
	"github.com/phil-holland/spike-round-sim/internal/summary"
	"github.com/phil-holland/spike-round-sim/internal/timeline"
	"github.com/phil-holland/spike-round-sim/internal/validate"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "https://github.com/phil-holland/spike-round-sim/document.schema.json"

// Document is the top level output of a simulation run
type Document struct {
	Metadata Metadata `json:"metadata"`
	Rounds   []Round  `json:"rounds"`
}

// Metadata describes how a document was produced
type Metadata struct {
	Version string `json:"version"`
	Seed    uint64 `json:"seed"`
	Rounds  int    `json:"rounds"`
}

// Round is a single simulated round and everything derived from it
type Round struct {
	ID         string               `json:"id"`
	Seed       uint64               `json:"seed"`
	Roster     []summary.PlayerInfo `json:"roster"`
	Timeline   json.RawMessage      `json:"timeline"`
	Summary    summary.Summary      `json:"summary"`
	Validation validate.Result      `json:"validation"`
	Legacy     *legacy.Round        `json:"legacy,omitempty"`
	Rating     *impact.Rating       `json:"rating,omitempty"`
}

// NewDocument wraps rounds with the metadata of the run that produced them
func NewDocument(seed uint64, rounds []Round) Document {
	if rounds == nil {
		rounds = []Round{}
	}
	return Document{
		Metadata: Metadata{Version: impact.Version, Seed: seed, Rounds: len(rounds)},
		Rounds:   rounds,
	}
}

// NewRound encodes a round's timeline and bundles it with its derived data
func NewRound(id string, seed uint64, roster []summary.PlayerInfo, events []timeline.Event,
	s summary.Summary, res validate.Result) (Round, error) {
	raw, err := timeline.Marshal(events)
	if err != nil {
		return Round{}, fmt.Errorf("round %s: %w", id, err)
	}
	if roster == nil {
		roster = []summary.PlayerInfo{}
	}
	if res.Errors == nil {
		res.Errors = []validate.Finding{}
	}
	if res.Warnings == nil {
		res.Warnings = []validate.Finding{}
	}
	return Round{
		ID:         id,
		Seed:       seed,
		Roster:     roster,
		Timeline:   raw,
		Summary:    s,
		Validation: res,
	}, nil
}

// Events decodes the round's timeline
func (r Round) Events() ([]timeline.Event, error) {
	return timeline.Unmarshal(r.Timeline)
}

// Write encodes a document to w
func Write(w io.Writer, doc Document, pretty bool) error {
	var raw []byte
	var err error
	if pretty {
		raw, err = json.MarshalIndent(doc, "", "  ")
	} else {
		raw, err = json.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// Read decodes a document written by Write
func Read(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("unmarshal document: %w", err)
	}
	return doc, nil
}

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

// Validate checks an encoded document against the published schema
func Validate(raw []byte) error {
	schema, err := compiled()
	if err != nil {
		return err
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return schema.Validate(payload)
}
