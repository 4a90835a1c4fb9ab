package graph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wikigraph_pages_written_total",
		Help: "Articles written to the reference artifact",
	})

	pagesExcluded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wikigraph_pages_excluded_total",
		Help: "Articles skipped because their title has a namespace prefix",
	})

	nodesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wikigraph_nodes_created_total",
		Help: "Graph nodes created",
	})

	linksCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wikigraph_links_created_total",
		Help: "Relationships created by type",
	}, []string{"type"})

	badLinks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wikigraph_bad_links_total",
		Help: "References whose target title did not resolve",
	})
)
