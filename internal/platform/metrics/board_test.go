package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quoteboard/internal/domain"
	"github.com/jsamuelsen/quoteboard/internal/ports"
)

var (
	_ ports.BoardObserver = (*BoardMetrics)(nil)
	_ ports.FetchRecorder = (*BoardMetrics)(nil)
)

func TestNewBoardMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := NewBoardMetrics(reg)
	require.NoError(t, err)

	_, err = NewBoardMetrics(reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registering board metrics")
}

func TestBoardMetrics_ObserveBoard(t *testing.T) {
	m, err := NewBoardMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveBoard(domain.Board{
		Current: "Q2",
		Saved:   []domain.SavedQuote{{ID: "1", Text: "Q1"}, {ID: "2", Text: "Q2"}},
		Version: 7,
	})

	assert.InDelta(t, 2, testutil.ToFloat64(m.savedQuotes), 0)
	assert.InDelta(t, 7, testutil.ToFloat64(m.boardVersion), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.hasCurrent), 0)

	m.ObserveBoard(domain.Board{Version: 8})

	assert.InDelta(t, 0, testutil.ToFloat64(m.savedQuotes), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.hasCurrent), 0)
}

func TestBoardMetrics_RecordFetch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewBoardMetrics(reg)
	require.NoError(t, err)

	m.RecordFetch(domain.FetchSuccess, 120*time.Millisecond)
	m.RecordFetch(domain.FetchSuccess, 80*time.Millisecond)
	m.RecordFetch(domain.FetchFailed, time.Second)

	expected := `
# HELP quoteboard_fetch_total Quote fetches by outcome.
# TYPE quoteboard_fetch_total counter
quoteboard_fetch_total{outcome="failure"} 1
quoteboard_fetch_total{outcome="stale"} 0
quoteboard_fetch_total{outcome="success"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "quoteboard_fetch_total"))
	assert.Equal(t, 2, testutil.CollectAndCount(m.fetchDuration))
}
