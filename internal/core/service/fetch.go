package service

import (
	"context"
	"net/url"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vehicle-parking/vpa-client/internal/core/envelope"
	"github.com/vehicle-parking/vpa-client/internal/core/ports"
)

var fetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vpa_client_store_fetch_failures_total",
	Help: "Collection fetches that failed and left the collection empty.",
}, []string{"store", "collection"})

// fetchState is the loading/error bookkeeping shared by the data stores.
// Loading stays true while any fetch is in flight; the last failure wins.
type fetchState struct {
	mu       sync.RWMutex
	inflight int
	err      error
}

func (f *fetchState) begin() {
	f.mu.Lock()
	f.inflight++
	f.err = nil
	f.mu.Unlock()
}

func (f *fetchState) Loading() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.inflight > 0
}

// Err is the error of the most recent failed fetch, cleared when a fetch starts.
func (f *fetchState) Err() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.err
}

// fetchList GETs path and decodes the collection under key. On failure it
// returns an empty slice along with the error.
func fetchList[T any](ctx context.Context, api ports.APIClient, path string, query url.Values, key string) ([]T, error) {
	env, err := api.Get(ctx, path, query)
	if err != nil {
		return []T{}, err
	}
	return envelope.List[T](env, key)
}

// finish records the outcome of a fetch; set runs under the state lock.
func (f *fetchState) finish(store, collection string, err error, set func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inflight--
	set()
	if err != nil {
		f.err = err
		fetchFailures.WithLabelValues(store, collection).Inc()
	}
	return err
}
