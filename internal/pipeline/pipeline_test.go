package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quakeline/nordic-etl/internal/domain"
	"github.com/quakeline/nordic-etl/internal/observability"
	"github.com/quakeline/nordic-etl/internal/pipeline"
)

// --- mocks ---

type mockExtractor struct {
	mu      sync.Mutex
	batches [][]domain.SourceFile
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.SourceFile, error) {
	m.mu.Lock()
	if len(m.batches) == 0 {
		m.mu.Unlock()
		// block until context cancelled to simulate an empty spool
		<-ctx.Done()
		return nil, ctx.Err()
	}
	batch := m.batches[0]
	m.batches = m.batches[1:]
	m.mu.Unlock()
	return batch, nil
}

type mockAssembler struct {
	err error
}

func (m *mockAssembler) AssembleFile(file domain.SourceFile) (domain.Event, error) {
	if m.err != nil {
		return domain.Event{}, m.err
	}
	return domain.Event{ResourceID: domain.ResourceID(file.Name)}, nil
}

type mockLoader struct {
	mu     sync.Mutex
	loaded []domain.Event
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, events...)
	return nil
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func sourceFile(name string) domain.SourceFile {
	return domain.SourceFile{Name: name, Lines: []string{""}}
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	ext := &mockExtractor{batches: [][]domain.SourceFile{
		{sourceFile("01-1242-20L.S200002"), sourceFile("02-0330-15L.S200002")},
	}}
	asm := &mockAssembler{}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, asm, ldr, slog.Default(), metrics, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	require.Len(t, ldr.loaded, 2)
	assert.Equal(t, domain.ResourceID("01-1242-20L.S200002"), ldr.loaded[0].ResourceID)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{} // no batches, will block
	asm := &mockAssembler{}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, asm, ldr, slog.Default(), metrics, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, ldr.loaded)
}

func TestPipeline_Run_AssembleErrorSkipsAndCommits(t *testing.T) {
	var committed commitRecorder
	file := sourceFile("bad-file")
	file.Commit = committed.commit

	ext := &mockExtractor{batches: [][]domain.SourceFile{{file}}}
	asm := &mockAssembler{err: errors.New("no hypocenter (type-1) record")}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, asm, ldr, slog.Default(), metrics, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, ldr.loaded)
	assert.True(t, committed.called())
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_CommitsAfterLoad(t *testing.T) {
	var committed commitRecorder
	file := sourceFile("01-1242-20L.S200002")
	file.Commit = committed.commit

	ext := &mockExtractor{batches: [][]domain.SourceFile{{file}}}
	asm := &mockAssembler{}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, asm, ldr, slog.Default(), metrics, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	require.Len(t, ldr.loaded, 1)
	assert.True(t, committed.called())
}

func TestPipeline_Run_LoadFailureDoesNotCommit(t *testing.T) {
	var committed commitRecorder
	file := sourceFile("01-1242-20L.S200002")
	file.Commit = committed.commit

	ext := &mockExtractor{batches: [][]domain.SourceFile{{file}}}
	asm := &mockAssembler{}
	ldr := &mockLoader{err: errors.New("broker unavailable")}
	metrics := newTestMetrics()

	p := pipeline.New(ext, asm, ldr, slog.Default(), metrics, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, ldr.loaded)
	assert.False(t, committed.called())
}

func TestMultiLoader_FansOutInOrder(t *testing.T) {
	first := &mockLoader{}
	second := &mockLoader{}
	ml := pipeline.MultiLoader{first, second}

	events := []domain.Event{{ResourceID: "2000-02-01T12-42-20"}}
	require.NoError(t, ml.LoadBatch(context.Background(), events))
	assert.Len(t, first.loaded, 1)
	assert.Len(t, second.loaded, 1)
}

func TestMultiLoader_StopsOnFirstError(t *testing.T) {
	first := &mockLoader{err: errors.New("sink down")}
	second := &mockLoader{}
	ml := pipeline.MultiLoader{first, second}

	err := ml.LoadBatch(context.Background(), []domain.Event{{ResourceID: "x"}})
	require.Error(t, err)
	assert.Empty(t, second.loaded)
}

// --- helpers ---

type commitRecorder struct {
	mu sync.Mutex
	ok bool
}

func (a *commitRecorder) commit(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ok = true
	return nil
}

func (a *commitRecorder) called() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ok
}
