package results

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/lead"
	"github.com/sells-group/prospect-cli/internal/resilience"
)

// MockFetcher implements Fetcher for testing.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchResults(ctx context.Context) ([]lead.Raw, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]lead.Raw), args.Error(1)
}

// gatedFetcher returns queued responses, each released by its own channel,
// so tests can control the order in which overlapping loads resolve.
type gatedFetcher struct {
	calls chan chan fetchResult
}

type fetchResult struct {
	rows []lead.Raw
	err  error
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{calls: make(chan chan fetchResult, 8)}
}

func (g *gatedFetcher) FetchResults(ctx context.Context) ([]lead.Raw, error) {
	ch := make(chan fetchResult, 1)
	g.calls <- ch
	r := <-ch
	return r.rows, r.err
}

func TestNewStore_Empty(t *testing.T) {
	s := NewStore(new(MockFetcher))
	st := s.Snapshot()

	assert.NotNil(t, st.Records)
	assert.Empty(t, st.Records)
	assert.False(t, st.Loading)
	assert.NoError(t, st.LastError)
	assert.True(t, st.LoadedAt.IsZero())
}

func TestLoad_ReplacesRecords(t *testing.T) {
	mf := new(MockFetcher)
	ctx := context.Background()

	mf.On("FetchResults", ctx).Return([]lead.Raw{{"Nom": "A"}, {"Nom": "B"}}, nil).Once()
	mf.On("FetchResults", ctx).Return([]lead.Raw{{"Nom": "C"}}, nil).Once()

	s := NewStore(mf)
	require.NoError(t, s.Load(ctx))
	require.Len(t, s.Records(), 2)

	require.NoError(t, s.Load(ctx))
	recs := s.Records()
	require.Len(t, recs, 1, "records are replaced, not merged")
	assert.Equal(t, "C", recs[0].Name)
	assert.False(t, s.Loading())
	assert.False(t, s.Snapshot().LoadedAt.IsZero())
	mf.AssertExpectations(t)
}

func TestLoad_NormalizesEveryRecord(t *testing.T) {
	mf := new(MockFetcher)
	ctx := context.Background()
	mf.On("FetchResults", ctx).Return([]lead.Raw{{}, {"Nom": "B", "Téléphone trouvé sur site": "0102030405"}}, nil)

	s := NewStore(mf)
	require.NoError(t, s.Load(ctx))

	recs := s.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "N/A", recs[0].Name)
	assert.Equal(t, "Aucun numéro", recs[0].Phone)
	assert.Equal(t, "0102030405", recs[1].Phone)
}

func TestLoad_StaleOnError(t *testing.T) {
	mf := new(MockFetcher)
	ctx := context.Background()

	mf.On("FetchResults", ctx).Return([]lead.Raw{{"Nom": "A"}}, nil).Once()
	mf.On("FetchResults", ctx).Return(nil, errors.New("connection refused")).Once()

	s := NewStore(mf)
	require.NoError(t, s.Load(ctx))
	before := s.Records()

	err := s.Load(ctx)
	require.Error(t, err)
	assert.True(t, resilience.IsTransport(err))

	st := s.Snapshot()
	assert.Equal(t, before, st.Records, "failed load keeps previous records")
	assert.Error(t, st.LastError)
	assert.False(t, st.Loading, "loading is cleared after a failure")
	mf.AssertExpectations(t)
}

func TestLoad_SuccessClearsLastError(t *testing.T) {
	mf := new(MockFetcher)
	ctx := context.Background()

	mf.On("FetchResults", ctx).Return(nil, errors.New("boom")).Once()
	mf.On("FetchResults", ctx).Return([]lead.Raw{}, nil).Once()

	s := NewStore(mf)
	require.Error(t, s.Load(ctx))
	require.Error(t, s.Snapshot().LastError)

	require.NoError(t, s.Load(ctx))
	assert.NoError(t, s.Snapshot().LastError)
}

func TestLoad_LastResponseWins(t *testing.T) {
	g := newGatedFetcher()
	s := NewStore(g)
	ctx := context.Background()

	errs := make(chan error, 2)
	go func() { errs <- s.Load(ctx) }()
	first := <-g.calls
	go func() { errs <- s.Load(ctx) }()
	second := <-g.calls

	assert.True(t, s.Loading())

	// The second request resolves first, the first request resolves last.
	second <- fetchResult{rows: []lead.Raw{{"Nom": "newer request"}}}
	require.NoError(t, <-errs)
	assert.True(t, s.Loading(), "still loading while the other request is pending")

	first <- fetchResult{rows: []lead.Raw{{"Nom": "older request"}}}
	require.NoError(t, <-errs)

	recs := s.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "older request", recs[0].Name)
	assert.False(t, s.Loading())
}

func TestLoad_OverlappingFailureDoesNotClobberRecords(t *testing.T) {
	g := newGatedFetcher()
	s := NewStore(g)
	ctx := context.Background()

	errs := make(chan error, 2)
	go func() { errs <- s.Load(ctx) }()
	first := <-g.calls
	go func() { errs <- s.Load(ctx) }()
	second := <-g.calls

	first <- fetchResult{rows: []lead.Raw{{"Nom": "A"}}}
	require.NoError(t, <-errs)
	second <- fetchResult{err: errors.New("timeout")}
	require.Error(t, <-errs)

	recs := s.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "A", recs[0].Name)
}
