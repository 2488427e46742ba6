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

// Package options is the CLI/env flag surface: every flag also falls back
// to an environment variable of the same name, uppercased with underscores,
// following the teacher's fs.*VarWithEnv / env.WithDefault* convention.
package options

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	flag "github.com/spf13/pflag"

	"github.com/ThomasK33/kube-scheduler-go/pkg/utils/env"
)

// Algorithm is the closed set of placement algorithms this scheduler can
// dispatch to. Modeled as a tagged variant with a single entry rather than
// a plugin-style registry, per spec.md §9.
type Algorithm string

const BinPacking Algorithm = "BinPacking"

var validAlgorithms = []Algorithm{BinPacking}

// Options holds every CLI flag / env var this process accepts.
type Options struct {
	Algorithm           Algorithm
	algorithmRaw        string
	SchedulerName       string
	DebounceDuration    time.Duration
	DebounceTimeout     time.Duration
	Verbosity           string
	MetricsAddr         string
	Kubeconfig          string
	APITimeout          time.Duration
	ShutdownGracePeriod time.Duration
}

type FlagSet struct {
	*flag.FlagSet
}

func (o *Options) AddFlags(fs *FlagSet) {
	fs.StringVar(&o.algorithmRaw, "algorithm", env.WithDefaultString("ALGORITHM", string(BinPacking)), "Placement algorithm to use. Currently only BinPacking is supported.")
	fs.StringVar(&o.SchedulerName, "scheduler-name", env.WithDefaultString("SCHEDULER_NAME", "kube-scheduler-go"), "The scheduler name this process answers scheduling requests for (spec.schedulerName on unscheduled pods).")
	fs.DurationVar(&o.DebounceDuration, "debounce-duration", env.WithDefaultDuration("DEBOUNCE_DURATION", 3*time.Second), "Idle window a burst of pod events must go quiet for before a scheduling pass fires.")
	fs.DurationVar(&o.DebounceTimeout, "debounce-timeout", env.WithDefaultDuration("DEBOUNCE_TIMEOUT", 10*time.Second), "Hard ceiling on how long a scheduling pass can be delayed by a sliding debounce window.")
	fs.StringVar(&o.Verbosity, "verbosity", env.WithDefaultString("VERBOSITY", "info"), "Log verbosity: off, error, warn, info, debug, or trace.")
	fs.StringVar(&o.MetricsAddr, "metrics-addr", env.WithDefaultString("METRICS_ADDR", ":8080"), "Address the Prometheus /metrics endpoint binds to.")
	fs.StringVar(&o.Kubeconfig, "kubeconfig", env.WithDefaultString("KUBECONFIG", ""), "Path to a kubeconfig file. Empty uses the in-cluster config.")
	fs.DurationVar(&o.APITimeout, "api-timeout", env.WithDefaultDuration("API_TIMEOUT", 30*time.Second), "Per-call timeout applied to cluster API list and bind requests.")
	fs.DurationVar(&o.ShutdownGracePeriod, "shutdown-grace-period", env.WithDefaultDuration("SHUTDOWN_GRACE_PERIOD", 10*time.Second), "How long to wait for an in-flight scheduling pass to finish on shutdown before force-exiting.")
}

// Parse validates flags after fs.Parse has populated them, and resolves
// the raw algorithm string into its closed-set type.
func (o *Options) Parse() error {
	if !lo.Contains(validAlgorithms, Algorithm(o.algorithmRaw)) {
		return fmt.Errorf("invalid --algorithm %q: must be one of %v", o.algorithmRaw, validAlgorithms)
	}
	o.Algorithm = Algorithm(o.algorithmRaw)
	if o.DebounceTimeout < o.DebounceDuration {
		return fmt.Errorf("--debounce-timeout (%s) must be >= --debounce-duration (%s)", o.DebounceTimeout, o.DebounceDuration)
	}
	return nil
}

// ToContext stores o in ctx for downstream FromContext lookups.
func (o *Options) ToContext(ctx context.Context) context.Context {
	return ToContext(ctx, o)
}
