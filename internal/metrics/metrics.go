// Package metrics holds the service's prometheus collectors. They register on
// the default registry, which the fiber prometheus middleware serves at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ddproperty"

var (
	// MediaRelocations counts staged media files by kind and outcome (moved, reconciled, missing, failed).
	MediaRelocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_relocations_total",
		Help:      "Staged media files processed by the relocator.",
	}, []string{"kind", "result"})

	// TaxonomyDropped counts submitted attribute keys with no canonical mapping.
	TaxonomyDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "taxonomy_dropped_keys_total",
		Help:      "Attribute keys dropped because they could not be mapped.",
	}, []string{"kind"})

	// PropertyCodeRetries counts creation transactions retried after a code collision.
	PropertyCodeRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "property_code_retries_total",
		Help:      "Property creations retried after a property code conflict.",
	})

	// MediaSweeps counts reconcile sweeps by outcome.
	MediaSweeps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_sweeps_total",
		Help:      "Background media reconcile sweeps.",
	}, []string{"result"})
)
