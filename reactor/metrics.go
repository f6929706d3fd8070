/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package reactor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metricsSet holds the optional dispatch-loop counters enabled by
// Config.Metrics. Registration is deferred to EnableMetrics so a Reactor
// built with Metrics: false never touches the default registerer.
type metricsSet struct {
	wakeups    prometheus.Counter
	dispatched *prometheus.CounterVec
	panics     prometheus.Counter
	liveFds    prometheus.GaugeFunc
}

func newMetricsSet(o *reactorImpl) *metricsSet {
	return &metricsSet{
		wakeups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netcore",
			Subsystem: "reactor",
			Name:      "wakeups_total",
			Help:      "Number of times the backend wait call returned.",
		}),
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netcore",
			Subsystem: "reactor",
			Name:      "events_dispatched_total",
			Help:      "Number of callbacks invoked, labeled by event kind.",
		}, []string{"kind"}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netcore",
			Subsystem: "reactor",
			Name:      "callback_panics_total",
			Help:      "Number of callback panics recovered at the dispatch boundary.",
		}),
		liveFds: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "netcore",
			Subsystem: "reactor",
			Name:      "live_entries",
			Help:      "Number of descriptor table entries currently registered.",
		}, func() float64 { return float64(o.Len()) }),
	}
}

func (o *reactorImpl) enableMetrics(reg prometheus.Registerer) error {
	if o.metrics != nil {
		return nil
	}

	m := newMetricsSet(o)
	for _, c := range []prometheus.Collector{m.wakeups, m.dispatched, m.panics, m.liveFds} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}

	o.metrics = m
	return nil
}

// EnableMetrics registers r's dispatch-loop counters with reg (typically
// prometheus.DefaultRegisterer). A Reactor built with Config.Metrics false
// can be switched on this way after the fact; the counters start recording
// from this call. Once a Reactor's counters are registered (by New or by an
// earlier call), further calls do nothing and return nil.
func EnableMetrics(r Reactor, reg prometheus.Registerer) error {
	o, ok := r.(*reactorImpl)
	if !ok {
		return nil
	}
	return o.enableMetrics(reg)
}
