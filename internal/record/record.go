// Package record encodes structured payloads into issue bodies and comments
// as fenced JSON blocks. Parsing is a tagged result rather than an error so
// each caller decides whether a missing or corrupt payload is tolerable.
package record

import (
	"encoding/json"
	"fmt"
	"strings"

	"gitwiki.app/server/internal/model"
)

const (
	fenceOpen  = "```json"
	fenceClose = "```"

	// SchemaVersion is written into every envelope. Bodies without a
	// schema field are read as version 1.
	SchemaVersion = 1
)

// Envelope wraps a payload with an explicit schema version so future format
// changes don't depend on fence-scanning heuristics.
type Envelope struct {
	Schema int             `json:"schema"`
	Data   json.RawMessage `json:"data"`
}

type ParseStatus int

const (
	// StatusOK: a well-formed payload was found.
	StatusOK ParseStatus = iota
	// StatusEmpty: no fenced JSON block present (first use, or body wiped).
	StatusEmpty
	// StatusMalformed: a fence was found but its contents don't parse.
	StatusMalformed
)

type ParseResult struct {
	Status ParseStatus
	Schema int
	Data   json.RawMessage
}

// Parse extracts the first fenced JSON block from a body. Envelopes carry
// {schema, data}; a bare JSON document is accepted as a version-1 legacy
// payload.
func Parse(body string) ParseResult {
	start := strings.Index(body, fenceOpen)
	if start < 0 {
		return ParseResult{Status: StatusEmpty}
	}
	rest := body[start+len(fenceOpen):]

	end := strings.Index(rest, fenceClose)
	if end < 0 {
		return ParseResult{Status: StatusMalformed}
	}

	block := strings.TrimSpace(rest[:end])
	if block == "" {
		return ParseResult{Status: StatusEmpty}
	}

	var env Envelope
	if err := json.Unmarshal([]byte(block), &env); err != nil {
		return ParseResult{Status: StatusMalformed}
	}

	if env.Data == nil {
		// Legacy body: the whole block is the payload.
		return ParseResult{Status: StatusOK, Schema: 1, Data: json.RawMessage(block)}
	}

	schema := env.Schema
	if schema == 0 {
		schema = 1
	}
	return ParseResult{Status: StatusOK, Schema: schema, Data: env.Data}
}

// Decode unmarshals the parsed payload into out. Calling Decode on an Empty
// or Malformed result is a caller bug.
func (r ParseResult) Decode(out any) error {
	if r.Status != StatusOK {
		return fmt.Errorf("no payload to decode (status %d)", r.Status)
	}
	if err := json.Unmarshal(r.Data, out); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	return nil
}

// Render serializes payload into a body: preamble text followed by one
// fenced, versioned JSON block.
func Render(preamble string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding payload: %w", err)
	}

	env, err := json.MarshalIndent(Envelope{Schema: SchemaVersion, Data: data}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding envelope: %w", err)
	}

	var b strings.Builder
	if preamble != "" {
		b.WriteString(preamble)
		b.WriteString("\n\n")
	}
	b.WriteString(fenceOpen)
	b.WriteString("\n")
	b.Write(env)
	b.WriteString("\n")
	b.WriteString(fenceClose)
	b.WriteString("\n")
	return b.String(), nil
}

// InitialBody is the body a freshly provisioned index issue is created with:
// a do-not-edit preamble and an empty payload.
func InitialBody(def model.Definition) string {
	body, err := Render(Preamble(def), map[string]any{})
	if err != nil {
		// Marshalling a literal empty map cannot fail.
		panic(err)
	}
	return body
}

// Preamble is the human-readable header written above the fenced block.
func Preamble(def model.Definition) string {
	return fmt.Sprintf(
		"<!-- Managed by the wiki server. Do not edit by hand. -->\n\n## %s\n\nThis issue stores the wiki's %s records.",
		def.Title, def.Kind,
	)
}
