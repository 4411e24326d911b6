package fstore

import (
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// operation names used as metric labels
const (
	opInit   = "init"
	opSet    = "set"
	opGet    = "get"
	opRemove = "remove"
	opClear  = "clear"
	opData   = "data"
	opKeys   = "keys"
	opValues = "values"
	opLength = "length"
)

var operations = []string{opInit, opSet, opGet, opRemove, opClear, opData, opKeys, opValues, opLength}

// opMetrics holds the metrics of one operation of one store.
type opMetrics struct {
	calls    *metrics.Counter
	errors   *metrics.Counter
	duration *metrics.Histogram
}

// newStoreMetrics registers (or looks up) the metrics of all operations for
// the store at dir in the default VictoriaMetrics set.
func newStoreMetrics(dir string) map[string]*opMetrics {
	m := make(map[string]*opMetrics, len(operations))
	for _, op := range operations {
		labels := fmt.Sprintf(`{dir=%q,op=%q}`, dir, op)
		m[op] = &opMetrics{
			calls:    metrics.GetOrCreateCounter("keep_operations_total" + labels),
			errors:   metrics.GetOrCreateCounter("keep_operation_errors_total" + labels),
			duration: metrics.GetOrCreateHistogram("keep_operation_duration_seconds" + labels),
		}
	}
	return m
}

// observe records one call of op. It is meant to be deferred:
//
//	defer s.observe(opGet, time.Now(), &err)
func (s *Store) observe(op string, start time.Time, err *error) {
	m, ok := s.metrics[op]
	if !ok {
		return
	}
	m.calls.Inc()
	if err != nil && *err != nil {
		m.errors.Inc()
	}
	m.duration.UpdateDuration(start)
}
