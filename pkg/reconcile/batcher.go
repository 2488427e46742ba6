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

package reconcile

import (
	"context"
	"time"

	"k8s.io/utils/clock"
)

// Batcher coalesces a burst of Trigger calls into a single pass. An idle
// timer of length idleDuration (D) resets on every Trigger; a ceiling timer
// of length maxDuration (T) fires regardless of how often Trigger resets
// the idle timer, bounding worst-case staleness.
type Batcher struct {
	trigger chan struct{}
	clk     clock.Clock

	idleDuration time.Duration
	maxDuration  time.Duration
}

// NewBatcher constructs a Batcher with the given idle and max durations.
func NewBatcher(clk clock.Clock, idleDuration, maxDuration time.Duration) *Batcher {
	return &Batcher{
		trigger:      make(chan struct{}, 1),
		clk:          clk,
		idleDuration: idleDuration,
		maxDuration:  maxDuration,
	}
}

// Trigger records a pending event. It never blocks: the channel's capacity
// of 1 already coalesces a trigger arriving while one is pending. Every
// call pushes through, not just the first in a window, so Wait's idle timer
// resets on each one.
func (b *Batcher) Trigger() {
	select {
	case b.trigger <- struct{}{}:
	default:
	}
}

// Wait blocks until a batching window opens and then closes, returning true
// if it should be followed by a pass, or false if ctx was cancelled first.
// Once a window opens (the first Trigger is observed), Wait keeps extending
// it on every subsequent Trigger up to maxDuration.
func (b *Batcher) Wait(ctx context.Context) bool {
	select {
	case <-b.trigger:
	case <-ctx.Done():
		return false
	}

	maxTimer := b.clk.NewTimer(b.maxDuration)
	idleTimer := b.clk.NewTimer(b.idleDuration)
	defer func() {
		maxTimer.Stop()
		idleTimer.Stop()
	}()

	for {
		select {
		case <-b.trigger:
			if !idleTimer.Stop() {
				<-idleTimer.C()
			}
			idleTimer.Reset(b.idleDuration)
		case <-maxTimer.C():
			return true
		case <-idleTimer.C():
			return true
		case <-ctx.Done():
			return false
		}
	}
}
