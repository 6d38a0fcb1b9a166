package fundraising

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	boxOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fundraising_box_operations_total",
		Help: "Collection box operations by operation and result",
	}, []string{"operation", "result"})

	transferredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fundraising_transferred_amount_total",
		Help: "Amount credited to events by settlement currency",
	}, []string{"currency"})

	skippedEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fundraising_skipped_entries_total",
		Help: "Box entries left in place during empty because they could not be converted",
	}, []string{"currency"})
)

func observeBoxOperation(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	boxOperationsTotal.WithLabelValues(operation, result).Inc()
}
