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

package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLevelForKnownTiers(t *testing.T) {
	cases := map[string]zapcore.Level{
		"error": zapcore.ErrorLevel,
		"warn":  zapcore.WarnLevel,
		"info":  zapcore.InfoLevel,
		"":      zapcore.InfoLevel,
		"debug": zapcore.DebugLevel,
		"trace": zapcore.DebugLevel,
	}
	for verbosity, want := range cases {
		got, err := levelFor(verbosity)
		if err != nil {
			t.Fatalf("levelFor(%q) returned unexpected error: %v", verbosity, err)
		}
		if got != want {
			t.Errorf("levelFor(%q) = %v, want %v", verbosity, got, want)
		}
	}
}

func TestLevelForUnknownTier(t *testing.T) {
	if _, err := levelFor("verbose"); err == nil {
		t.Fatalf("expected an error for an unrecognized verbosity tier")
	}
}

func TestNewLoggerBuildsForEveryValidTier(t *testing.T) {
	for _, v := range []string{"off", "error", "warn", "info", "debug", "trace"} {
		if _, err := NewLogger(v); err != nil {
			t.Errorf("NewLogger(%q) returned unexpected error: %v", v, err)
		}
	}
}
