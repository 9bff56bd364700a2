// Copyright 2021 - 2024 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mpool

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StatsCollector exposes the stats of one pool as prometheus metrics.
// Registration is up to the caller; collection reads the atomics directly,
// no background goroutine.
type StatsCollector struct {
	m *MPool

	allocObjectsDesc *prometheus.Desc
	freeObjectsDesc  *prometheus.Desc
	inuseBytesDesc   *prometheus.Desc
	highWaterDesc    *prometheus.Desc
}

var _ prometheus.Collector = new(StatsCollector)

func NewStatsCollector(m *MPool) *StatsCollector {
	labels := prometheus.Labels{"pool": m.Name()}
	return &StatsCollector{
		m: m,
		allocObjectsDesc: prometheus.NewDesc(
			"mpool_allocate_objects",
			"Number of allocations served by the pool",
			nil, labels,
		),
		freeObjectsDesc: prometheus.NewDesc(
			"mpool_free_objects",
			"Number of blocks returned to the pool",
			nil, labels,
		),
		inuseBytesDesc: prometheus.NewDesc(
			"mpool_inuse_bytes",
			"Bytes currently held from the pool",
			nil, labels,
		),
		highWaterDesc: prometheus.NewDesc(
			"mpool_high_water_mark_bytes",
			"Max bytes ever held from the pool",
			nil, labels,
		),
	}
}

func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.allocObjectsDesc
	ch <- c.freeObjectsDesc
	ch <- c.inuseBytesDesc
	ch <- c.highWaterDesc
}

func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.m.Stats()
	ch <- prometheus.MustNewConstMetric(
		c.allocObjectsDesc,
		prometheus.CounterValue,
		float64(stats.NumAlloc.Load()),
	)
	ch <- prometheus.MustNewConstMetric(
		c.freeObjectsDesc,
		prometheus.CounterValue,
		float64(stats.NumFree.Load()),
	)
	ch <- prometheus.MustNewConstMetric(
		c.inuseBytesDesc,
		prometheus.GaugeValue,
		float64(stats.NumCurrBytes.Load()),
	)
	ch <- prometheus.MustNewConstMetric(
		c.highWaterDesc,
		prometheus.GaugeValue,
		float64(stats.HighWaterMark.Load()),
	)
}
