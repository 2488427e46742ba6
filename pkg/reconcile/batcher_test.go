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
	"testing"
	"time"

	"k8s.io/utils/clock"
)

func TestBatcherWaitReturnsTrueAfterIdleTimeout(t *testing.T) {
	b := NewBatcher(clock.RealClock{}, 20*time.Millisecond, 500*time.Millisecond)
	b.Trigger()

	start := time.Now()
	fired := b.Wait(context.Background())
	elapsed := time.Since(start)

	if !fired {
		t.Fatalf("expected Wait to return true")
	}
	if elapsed < 20*time.Millisecond {
		t.Fatalf("expected Wait to block for at least the idle duration, took %s", elapsed)
	}
	if elapsed > 200*time.Millisecond {
		t.Fatalf("expected Wait to return promptly after the idle window, took %s", elapsed)
	}
}

func TestBatcherWaitCoalescesBurst(t *testing.T) {
	b := NewBatcher(clock.RealClock{}, 30*time.Millisecond, 500*time.Millisecond)
	b.Trigger()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			time.Sleep(10 * time.Millisecond)
			b.Trigger()
		}
		close(done)
	}()

	start := time.Now()
	fired := b.Wait(context.Background())
	elapsed := time.Since(start)
	<-done

	if !fired {
		t.Fatalf("expected Wait to return true")
	}
	// The last trigger in the burst lands at ~30ms and should reset the idle
	// timer, so Wait returns at ~60ms (last trigger + idle duration), not at
	// the ~30ms a non-extending implementation (idle timer started once, at
	// the first trigger) would wrongly return at.
	if elapsed < 50*time.Millisecond {
		t.Fatalf("expected the last trigger in the burst to extend the idle window past first-trigger+idle, took %s", elapsed)
	}
	if elapsed > 300*time.Millisecond {
		t.Fatalf("expected coalesced wait to finish well under the max duration, took %s", elapsed)
	}
}

func TestBatcherWaitRespectsMaxDurationCeiling(t *testing.T) {
	b := NewBatcher(clock.RealClock{}, 20*time.Millisecond, 60*time.Millisecond)

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				b.Trigger()
			case <-stop:
				return
			}
		}
	}()
	defer close(stop)

	start := time.Now()
	fired := b.Wait(context.Background())
	elapsed := time.Since(start)

	if !fired {
		t.Fatalf("expected Wait to return true")
	}
	if elapsed > 150*time.Millisecond {
		t.Fatalf("expected the max-duration ceiling to bound the wait even under continuous triggers, took %s", elapsed)
	}
}

func TestBatcherWaitReturnsFalseOnContextCancelBeforeTrigger(t *testing.T) {
	b := NewBatcher(clock.RealClock{}, 20*time.Millisecond, 500*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	if b.Wait(ctx) {
		t.Fatalf("expected Wait to return false when the context is cancelled before any trigger")
	}
}

func TestBatcherWaitReturnsFalseOnContextCancelDuringWindow(t *testing.T) {
	b := NewBatcher(clock.RealClock{}, 200*time.Millisecond, 500*time.Millisecond)
	b.Trigger()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if b.Wait(ctx) {
		t.Fatalf("expected Wait to return false when the context is cancelled mid-window")
	}
}
