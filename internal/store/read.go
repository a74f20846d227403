package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/shaclq/internal/rdf"
)

// GraphInfo summarises a stored graph.
type GraphInfo struct {
	Name    string
	Triples int
}

// RunInfo summarises a stored run.
type RunInfo struct {
	RunID    string
	Shapes   int
	Compiled int
	Failed   int
}

// LoadGraph reads the graph stored under name, in import order.
// Returns an error if no such graph exists.
func (s *Store) LoadGraph(ctx context.Context, name string) (*rdf.MemGraph, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subject, predicate, object
		FROM triples
		WHERE graph = ?
		ORDER BY seq ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query triples: %w", err)
	}
	defer rows.Close()

	g := rdf.NewMemGraph()
	n := 0
	for rows.Next() {
		var subj, pred, obj string
		if err := rows.Scan(&subj, &pred, &obj); err != nil {
			return nil, fmt.Errorf("scan triple: %w", err)
		}
		subject, err := unmarshalTerm(subj)
		if err != nil {
			return nil, err
		}
		p, err := unmarshalTerm(pred)
		if err != nil {
			return nil, err
		}
		iri, ok := p.(rdf.IRI)
		if !ok {
			return nil, fmt.Errorf("load graph %q: predicate %s is not an IRI", name, p)
		}
		o, err := unmarshalTerm(obj)
		if err != nil {
			return nil, err
		}
		g.Add(subject, iri, o)
		n++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate triples: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("graph %q not found", name)
	}
	return g, nil
}

// Graphs lists the stored graphs by name.
func (s *Store) Graphs(ctx context.Context) ([]GraphInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT graph, COUNT(*)
		FROM triples
		GROUP BY graph
		ORDER BY graph COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query graphs: %w", err)
	}
	defer rows.Close()

	graphs := []GraphInfo{}
	for rows.Next() {
		var gi GraphInfo
		if err := rows.Scan(&gi.Name, &gi.Triples); err != nil {
			return nil, fmt.Errorf("scan graph: %w", err)
		}
		graphs = append(graphs, gi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate graphs: %w", err)
	}
	return graphs, nil
}

// ReadRun returns the compilations of a run in input order.
//
// Returns an empty slice (not nil) if the run is unknown.
func (s *Store) ReadRun(ctx context.Context, runID string) ([]Compilation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, shape, query, fingerprint, diagnostics, error, error_code
		FROM compilations
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query compilations: %w", err)
	}
	defer rows.Close()

	recs := []Compilation{}
	for rows.Next() {
		rec, err := scanCompilation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compilations: %w", err)
	}
	return recs, nil
}

// Runs summarises every stored run, ordered by run id. UUIDv7 run ids sort
// by creation time.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id,
		       COUNT(*),
		       SUM(CASE WHEN query != '' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN error != '' THEN 1 ELSE 0 END)
		FROM compilations
		GROUP BY run_id
		ORDER BY run_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunInfo{}
	for rows.Next() {
		var ri RunInfo
		if err := rows.Scan(&ri.RunID, &ri.Shapes, &ri.Compiled, &ri.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, ri)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// FindByFingerprint returns every stored compilation whose query has the
// given fingerprint, oldest run first.
func (s *Store) FindByFingerprint(ctx context.Context, fingerprint string) ([]Compilation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, shape, query, fingerprint, diagnostics, error, error_code
		FROM compilations
		WHERE fingerprint = ?
		ORDER BY run_id COLLATE BINARY ASC, seq ASC
	`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("query compilations: %w", err)
	}
	defer rows.Close()

	recs := []Compilation{}
	for rows.Next() {
		rec, err := scanCompilation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compilations: %w", err)
	}
	return recs, nil
}

func scanCompilation(rows *sql.Rows) (Compilation, error) {
	var (
		rec   Compilation
		shape string
		diags string
	)
	if err := rows.Scan(&rec.RunID, &rec.Seq, &shape, &rec.Query, &rec.Fingerprint, &diags, &rec.Error, &rec.ErrorCode); err != nil {
		return Compilation{}, fmt.Errorf("scan compilation: %w", err)
	}
	term, err := unmarshalTerm(shape)
	if err != nil {
		return Compilation{}, err
	}
	rec.Shape = term
	rec.Diagnostics, err = unmarshalDiagnostics(diags, term)
	if err != nil {
		return Compilation{}, err
	}
	return rec, nil
}
