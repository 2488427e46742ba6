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

package options

import (
	"testing"
	"time"
)

func TestParseRejectsUnknownAlgorithm(t *testing.T) {
	o := &Options{algorithmRaw: "Unknown", DebounceDuration: time.Second, DebounceTimeout: 2 * time.Second}
	if err := o.Parse(); err == nil {
		t.Fatalf("expected an error for an unknown algorithm")
	}
}

func TestParseRejectsTimeoutBelowDuration(t *testing.T) {
	o := &Options{algorithmRaw: string(BinPacking), DebounceDuration: 10 * time.Second, DebounceTimeout: time.Second}
	if err := o.Parse(); err == nil {
		t.Fatalf("expected an error when debounce-timeout is less than debounce-duration")
	}
}

func TestParseAcceptsValidOptions(t *testing.T) {
	o := &Options{algorithmRaw: string(BinPacking), DebounceDuration: 3 * time.Second, DebounceTimeout: 10 * time.Second}
	if err := o.Parse(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Algorithm != BinPacking {
		t.Fatalf("expected Algorithm to resolve to BinPacking, got %q", o.Algorithm)
	}
}
