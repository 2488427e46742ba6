/*
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

// Package metrics registers and updates the Prometheus instrumentation
// surface, following the teacher's pattern of package-level
// prometheus.*Vec values registered against controller-runtime's shared
// registry in an init().
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	v1 "k8s.io/api/core/v1"
	crmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/ThomasK33/kube-scheduler-go/pkg/scheduling"
)

// Namespace is the metric namespace prefix for every series this package
// registers.
const Namespace = "kube_scheduler_go"

func durationBuckets() []float64 {
	return prometheus.ExponentialBuckets(0.01, 2, 15)
}

var (
	passDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: "reconcile",
		Name:      "pass_duration_seconds",
		Help:      "Duration of one scheduling pass (snapshot, placement, bind).",
		Buckets:   durationBuckets(),
	})
	snapshotFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "snapshot",
		Name:      "failures_total",
		Help:      "Number of passes aborted because building a WorldState failed.",
	})
	podsPlaced = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "placement",
		Name:      "pods_total",
		Help:      "Number of pods scheduled per pass outcome.",
	}, []string{"outcome"})
	bindResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "binder",
		Name:      "bind_results_total",
		Help:      "Number of bind attempts, labeled by outcome.",
	}, []string{"outcome"})
)

func init() {
	crmetrics.Registry.MustRegister(passDuration, snapshotFailures, podsPlaced, bindResults)
}

// ObservePassDuration records the wall-clock duration of one scheduling
// pass.
func ObservePassDuration(d time.Duration) {
	passDuration.Observe(d.Seconds())
}

// IncSnapshotFailures increments the snapshot failure counter.
func IncSnapshotFailures() {
	snapshotFailures.Inc()
}

// ObservePlacementResult records how many pods a pass newly placed versus
// left unscheduled, broken down by rejection reason.
func ObservePlacementResult(newlyPlaced map[string][]*v1.Pod, target *scheduling.TargetState) {
	placed := 0
	for _, pods := range newlyPlaced {
		placed += len(pods)
	}
	podsPlaced.WithLabelValues("placed").Add(float64(placed))
	for _, u := range target.StillUnscheduled {
		podsPlaced.WithLabelValues(string(u.Reason)).Inc()
	}
}

// IncBindResult increments the bind-result counter for one outcome
// ("bound" or "failed"; the binder counts a benign rebind conflict as
// "bound").
func IncBindResult(outcome string) {
	bindResults.WithLabelValues(outcome).Inc()
}
