/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package stats

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// CounterSource is anything that can report a flat snapshot of named
// counters, such as (*client.Stats).GetCounters.
type CounterSource interface {
	GetCounters() map[string]int64
}

// PrometheusExporter periodically scrapes a CounterSource and republishes
// it as gauges on a /metrics endpoint.
type PrometheusExporter struct {
	registry   *prometheus.Registry
	source     CounterSource
	listenPort int
	interval   time.Duration
}

// NewPrometheusExporter returns an exporter that serves on listenPort,
// scraping source every scrapeInterval.
func NewPrometheusExporter(listenPort int, source CounterSource, scrapeInterval time.Duration) *PrometheusExporter {
	return &PrometheusExporter{
		registry:   prometheus.NewRegistry(),
		source:     source,
		listenPort: listenPort,
		interval:   scrapeInterval,
	}
}

// Start scrapes in a loop and blocks serving /metrics. Intended to be run
// in its own goroutine.
func (e *PrometheusExporter) Start() {
	go func() {
		for {
			e.scrapeMetrics()
			time.Sleep(e.interval)
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	addr := fmt.Sprintf(":%d", e.listenPort)
	log.Infof("nsp: starting prometheus exporter on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("nsp: prometheus listener failed: %v", err)
	}
}

func (e *PrometheusExporter) scrapeMetrics() {
	for mkey, mval := range e.source.GetCounters() {
		promCollector := prometheus.NewGauge(prometheus.GaugeOpts{
			Name: flattenKey(mkey),
			Help: mkey,
		})
		if err := e.registry.Register(promCollector); err != nil {
			are := &prometheus.AlreadyRegisteredError{}
			if errors.As(err, are) {
				promCollector = are.ExistingCollector.(prometheus.Gauge)
			} else {
				log.Errorf("nsp: failed to register metric %s: %v", mkey, err)
				continue
			}
		}
		promCollector.Set(float64(mval))
	}
}

func flattenKey(key string) string {
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, ".", "_")
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, "=", "_")
	key = strings.ReplaceAll(key, "/", "_")
	return key
}
