package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/shaclq/internal/diag"
	"github.com/roach88/shaclq/internal/rdf"
)

// Compilation is the stored result of compiling one shape in a run.
//
// A compiled shape has Query and Fingerprint; a shape that failed has Error
// and, for compiler errors, ErrorCode. A shape without scope has neither.
type Compilation struct {
	RunID       string
	Seq         int
	Shape       rdf.Term
	Query       string
	Fingerprint string
	Diagnostics []diag.Diagnostic
	Error       string
	ErrorCode   string
}

// ImportGraph stores g under name, replacing any graph already stored
// under that name. Triples keep g's insertion order.
func (s *Store) ImportGraph(ctx context.Context, name string, g *rdf.MemGraph) error {
	if name == "" {
		return fmt.Errorf("import graph: name is empty")
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM triples WHERE graph = ?`, name); err != nil {
			return fmt.Errorf("clear graph: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO triples (graph, seq, subject, predicate, object)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, t := range g.Triples() {
			subj, err := marshalTerm(t.Subject)
			if err != nil {
				return err
			}
			pred, err := marshalTerm(t.Predicate)
			if err != nil {
				return err
			}
			obj, err := marshalTerm(t.Object)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, name, i+1, subj, pred, obj); err != nil {
				return fmt.Errorf("insert triple %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("import graph %q: %w", name, err)
	}
	return nil
}

// RecordCompilations appends the results of a run. Records already stored
// for the same (run, seq) are left untouched, so recording is idempotent.
func (s *Store) RecordCompilations(ctx context.Context, recs []Compilation) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO compilations
			(run_id, seq, shape, query, fingerprint, diagnostics, error, error_code)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_id, seq) DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range recs {
			if rec.RunID == "" {
				return fmt.Errorf("compilation %d has no run id", rec.Seq)
			}
			shape, err := marshalTerm(rec.Shape)
			if err != nil {
				return err
			}
			diags, err := marshalDiagnostics(rec.Diagnostics)
			if err != nil {
				return err
			}
			_, err = stmt.ExecContext(ctx,
				rec.RunID,
				rec.Seq,
				shape,
				rec.Query,
				rec.Fingerprint,
				diags,
				rec.Error,
				rec.ErrorCode,
			)
			if err != nil {
				return fmt.Errorf("insert compilation %d: %w", rec.Seq, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record compilations: %w", err)
	}
	return nil
}
