// Package metrics exposes opencensus views as a Prometheus scrape endpoint.
package metrics

import (
	"fmt"
	"net/http"

	"contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats/view"

	"github.com/nerrad567/govee-web/internal/directory"
	"github.com/nerrad567/govee-web/internal/monitor"
)

// DefaultNamespace prefixes every exported metric name.
const DefaultNamespace = "goveeweb"

// Views returns every view the service records into.
func Views() []*view.View {
	return append(directory.Views(), monitor.CacheHealthyView)
}

// Exporter owns the registered views and the Prometheus handler.
type Exporter struct {
	pe    *prometheus.Exporter
	views []*view.View
}

// NewExporter registers Views and creates a Prometheus exporter whose
// metric names start with namespace.
//
// Returns:
//   - *Exporter: Serves the scrape endpoint via ServeHTTP
//   - error: If view registration or exporter creation fails
func NewExporter(namespace string) (*Exporter, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	views := Views()
	if err := view.Register(views...); err != nil {
		return nil, fmt.Errorf("registering views: %w", err)
	}

	pe, err := prometheus.NewExporter(prometheus.Options{
		Namespace: namespace,
	})
	if err != nil {
		view.Unregister(views...)
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	return &Exporter{pe: pe, views: views}, nil
}

// ServeHTTP writes the Prometheus text exposition.
func (e *Exporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.pe.ServeHTTP(w, r)
}

// Close unregisters the views.
func (e *Exporter) Close() {
	view.Unregister(e.views...)
}
