package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/shaclq/internal/diag"
	"github.com/roach88/shaclq/internal/rdf"
)

const (
	kindIRI     = "iri"
	kindBlank   = "blank"
	kindLiteral = "literal"
)

// termRecord is the stored form of a term. Field order is fixed, so
// encoding is deterministic.
type termRecord struct {
	Kind     string `json:"k"`
	Value    string `json:"v"`
	Datatype string `json:"dt,omitempty"`
	Lang     string `json:"lang,omitempty"`
}

// diagnosticRecord is the stored form of a diagnostic. The shape is the
// compilation's own shape and is not repeated.
type diagnosticRecord struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// encodeJSON marshals v with HTML escaping disabled and no trailing newline.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func marshalTerm(t rdf.Term) (string, error) {
	var rec termRecord
	switch v := t.(type) {
	case rdf.IRI:
		rec = termRecord{Kind: kindIRI, Value: string(v)}
	case rdf.BlankNode:
		rec = termRecord{Kind: kindBlank, Value: string(v)}
	case rdf.Literal:
		rec = termRecord{Kind: kindLiteral, Value: v.Lexical, Datatype: string(v.Datatype), Lang: v.Lang}
	default:
		return "", fmt.Errorf("marshal term: unsupported term %T", t)
	}
	data, err := encodeJSON(rec)
	if err != nil {
		return "", fmt.Errorf("marshal term: %w", err)
	}
	return data, nil
}

func unmarshalTerm(data string) (rdf.Term, error) {
	var rec termRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal term: %w", err)
	}
	switch rec.Kind {
	case kindIRI:
		return rdf.IRI(rec.Value), nil
	case kindBlank:
		return rdf.BlankNode(rec.Value), nil
	case kindLiteral:
		return rdf.Literal{Lexical: rec.Value, Datatype: rdf.IRI(rec.Datatype), Lang: rec.Lang}, nil
	default:
		return nil, fmt.Errorf("unmarshal term: unknown kind %q", rec.Kind)
	}
}

func marshalDiagnostics(ds []diag.Diagnostic) (string, error) {
	recs := make([]diagnosticRecord, len(ds))
	for i, d := range ds {
		recs[i] = diagnosticRecord{Kind: string(d.Kind), Message: d.Message}
	}
	data, err := encodeJSON(recs)
	if err != nil {
		return "", fmt.Errorf("marshal diagnostics: %w", err)
	}
	return data, nil
}

// unmarshalDiagnostics restores diagnostics, attaching shape to each.
func unmarshalDiagnostics(data string, shape rdf.Term) ([]diag.Diagnostic, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var recs []diagnosticRecord
	if err := json.Unmarshal([]byte(data), &recs); err != nil {
		return nil, fmt.Errorf("unmarshal diagnostics: %w", err)
	}
	out := make([]diag.Diagnostic, len(recs))
	for i, r := range recs {
		out[i] = diag.Diagnostic{Kind: diag.Kind(r.Kind), Message: r.Message, Shape: shape}
	}
	return out, nil
}
