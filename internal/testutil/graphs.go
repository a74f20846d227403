// Package testutil holds helpers shared by package tests.
package testutil

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/shaclq/internal/loader"
	"github.com/roach88/shaclq/internal/metamodel"
	"github.com/roach88/shaclq/internal/rdf"
)

// ShapesGraph parses a YAML shapes document and fails the test on error.
func ShapesGraph(t testing.TB, doc string) *rdf.MemGraph {
	t.Helper()
	l := loader.New()
	require.NoError(t, l.LoadYAML("shapes.yaml", []byte(doc)), "load shapes document")
	return l.Graph()
}

// DefaultMetamodel returns the built-in metamodel and fails the test if it
// does not load.
func DefaultMetamodel(t testing.TB) *metamodel.Metamodel {
	t.Helper()
	meta, err := metamodel.Default()
	require.NoError(t, err, "load default metamodel")
	return meta
}

// LogBuffer is a concurrency-safe buffer for captured log output.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// CaptureLogger returns a debug-level text logger writing into the
// returned buffer.
func CaptureLogger() (*slog.Logger, *LogBuffer) {
	buf := &LogBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, buf
}
