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

// Package reconcile drives the debounced scheduling loop: a watch stream
// (wired by the caller, e.g. a client-go SharedIndexInformer) calls Trigger
// on every unscheduled-pod add/update; Loop coalesces bursts via Batcher
// and runs exactly one pass at a time.
package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"
	v1 "k8s.io/api/core/v1"
	"k8s.io/utils/clock"
	"knative.dev/pkg/logging"

	"github.com/ThomasK33/kube-scheduler-go/pkg/binder"
	"github.com/ThomasK33/kube-scheduler-go/pkg/metrics"
	"github.com/ThomasK33/kube-scheduler-go/pkg/scheduling"
	"github.com/ThomasK33/kube-scheduler-go/pkg/snapshot"
	"github.com/ThomasK33/kube-scheduler-go/pkg/utils/pretty"
)

// Loop owns the debounce state and the synchronous pass body: snapshot,
// placement, bind. At most one pass runs at any moment — Run's body is
// entirely sequential, so a second Wait() call cannot begin until the
// previous pass's synchronous body has returned.
type Loop struct {
	batcher        *Batcher
	snapshotter    *snapshot.Snapshotter
	binder         *binder.Binder
	unscheduledLog *pretty.ChangeMonitor
}

// New constructs a Loop with the given debounce/timeout durations.
func New(clk clock.Clock, idleDuration, maxDuration time.Duration, snapshotter *snapshot.Snapshotter, b *binder.Binder) *Loop {
	return &Loop{
		batcher:        NewBatcher(clk, idleDuration, maxDuration),
		snapshotter:    snapshotter,
		binder:         b,
		unscheduledLog: pretty.NewChangeMonitor(pretty.WithVisibilityTimeout(time.Hour)),
	}
}

// Trigger records an unscheduled-pod watch event. Safe to call from any
// goroutine, including informer event handlers.
func (l *Loop) Trigger() {
	l.batcher.Trigger()
}

// Run blocks, alternating between waiting for a debounced batch of
// triggers and executing the resulting pass, until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	logger := logging.FromContext(ctx)
	for {
		if !l.batcher.Wait(ctx) {
			logger.Debug("reconcile loop shutting down")
			return
		}
		l.runPass(ctx, logger)
	}
}

// runPass executes one full pass: snapshot, placement, bind. A pass that
// has begun binding is not cancelled mid-bind even if ctx is subsequently
// cancelled; partial bindings are acceptable and idempotent on retry.
func (l *Loop) runPass(ctx context.Context, logger *zap.SugaredLogger) {
	start := time.Now()
	defer func() { metrics.ObservePassDuration(time.Since(start)) }()

	world, err := l.snapshotter.Snapshot(ctx)
	if err != nil {
		logger.Errorw("snapshot failed, will retry on next trigger", "error", err)
		metrics.IncSnapshotFailures()
		return
	}
	if len(world.UnscheduledPods) == 0 {
		logger.Debug("no unscheduled pods, pass is a no-op")
		return
	}

	target := scheduling.Schedule(world)
	newlyPlaced := target.NewPods(world)
	l.logScheduleResult(logger, newlyPlaced, target)
	metrics.ObservePlacementResult(newlyPlaced, target)

	l.binder.Bind(context.WithoutCancel(ctx), world, target)
}

// logScheduleResult logs placement results, deduplicating a pod stuck with
// the same rejection reason across consecutive passes so a permanently
// unschedulable pod doesn't spam info logs on every debounce window.
func (l *Loop) logScheduleResult(logger *zap.SugaredLogger, newlyPlaced map[string][]*v1.Pod, target *scheduling.TargetState) {
	placed := 0
	for _, pods := range newlyPlaced {
		placed += len(pods)
	}
	for _, u := range target.StillUnscheduled {
		key := string(u.Pod.UID)
		if key == "" {
			key = u.Pod.Namespace + "/" + u.Pod.Name
		}
		if l.unscheduledLog.HasChanged(key, u.Reason) {
			logger.Infow("pod left unscheduled", "pod", u.Pod.Namespace+"/"+u.Pod.Name, "reason", string(u.Reason))
		}
	}
	logger.Infow("scheduling pass complete", "placed", placed, "unscheduled", len(target.StillUnscheduled))
}
