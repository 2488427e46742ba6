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

// Command kube-scheduler-go is the process entrypoint: parse options, build
// the cluster clients, wire an informer-driven debounced reconcile loop, and
// serve it until an OS signal requests a bounded-grace-period shutdown.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	v1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/cache"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/utils/clock"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client/config"
	"sigs.k8s.io/controller-runtime/pkg/manager"
	crmetricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"github.com/ThomasK33/kube-scheduler-go/pkg/binder"
	"github.com/ThomasK33/kube-scheduler-go/pkg/events"
	schedlogging "github.com/ThomasK33/kube-scheduler-go/pkg/logging"
	"github.com/ThomasK33/kube-scheduler-go/pkg/options"
	"github.com/ThomasK33/kube-scheduler-go/pkg/reconcile"
	"github.com/ThomasK33/kube-scheduler-go/pkg/snapshot"
)

func main() {
	opts := &options.Options{}
	fs := &options.FlagSet{FlagSet: flag.NewFlagSet("kube-scheduler-go", flag.ExitOnError)}
	opts.AddFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := opts.Parse(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := schedlogging.NewLogger(opts.Verbosity)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := ctrl.SetupSignalHandler()
	ctx = schedlogging.WithLogger(ctx, logger)
	ctx = opts.ToContext(ctx)

	if err := run(ctx, opts, logger); err != nil {
		logger.Fatalw("kube-scheduler-go exited with an error", "error", err)
	}
}

// run builds every cluster client and controller, registers the reconcile
// loop as a manager.Runnable, and blocks until the manager stops: either on
// its own, or, once the context is cancelled (by the OS signal handler
// installed in main), when it finishes draining or the shutdown grace period
// elapses, whichever comes first.
func run(ctx context.Context, opts *options.Options, logger *zap.SugaredLogger) error {
	restConfig, err := buildRestConfig(opts.Kubeconfig)
	if err != nil {
		return fmt.Errorf("building rest config: %w", err)
	}
	restConfig.UserAgent = "kube-scheduler-go"
	restConfig.Timeout = opts.APITimeout

	mgr, err := manager.New(restConfig, manager.Options{
		Scheme:  clientgoscheme.Scheme,
		Metrics: crmetricsserver.Options{BindAddress: opts.MetricsAddr},
	})
	if err != nil {
		return fmt.Errorf("constructing manager: %w", err)
	}

	if err := snapshot.RegisterIndices(ctx, mgr.GetFieldIndexer()); err != nil {
		return fmt.Errorf("registering field indices: %w", err)
	}

	coreV1, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return fmt.Errorf("building clientset: %w", err)
	}

	recorder := events.NewRecorder(mgr.GetEventRecorderFor(opts.SchedulerName))
	b := binder.New(coreV1.CoreV1(), opts.SchedulerName, recorder)
	snapshotter := snapshot.NewSnapshotter(mgr.GetClient(), opts.SchedulerName)
	loop := reconcile.New(clock.RealClock{}, opts.DebounceDuration, opts.DebounceTimeout, snapshotter, b)

	if err := wireTriggers(ctx, mgr, loop); err != nil {
		return err
	}

	if err := mgr.Add(manager.RunnableFunc(func(ctx context.Context) error {
		loop.Run(ctx)
		return nil
	})); err != nil {
		return fmt.Errorf("registering reconcile loop runnable: %w", err)
	}

	logger.Infow("starting kube-scheduler-go",
		"schedulerName", opts.SchedulerName,
		"algorithm", opts.Algorithm,
		"debounceDuration", opts.DebounceDuration,
		"debounceTimeout", opts.DebounceTimeout,
		"metricsAddr", opts.MetricsAddr,
	)

	return startWithGracePeriod(ctx, mgr, opts.ShutdownGracePeriod, logger)
}

// wireTriggers registers informer event handlers that call loop.Trigger on
// every pod add, update or delete and every node add or update. Node
// changes matter because a node becoming
// schedulable (or newly appearing) can unblock pods that were previously
// rejected for lack of a feasible node.
func wireTriggers(ctx context.Context, mgr manager.Manager, loop *reconcile.Loop) error {
	podInformer, err := mgr.GetCache().GetInformer(ctx, &v1.Pod{})
	if err != nil {
		return fmt.Errorf("getting pod informer: %w", err)
	}
	if _, err := podInformer.AddEventHandler(cache.ResourceEventHandlerFuncs{
		AddFunc:    func(any) { loop.Trigger() },
		UpdateFunc: func(any, any) { loop.Trigger() },
		DeleteFunc: func(any) { loop.Trigger() },
	}); err != nil {
		return fmt.Errorf("registering pod event handler: %w", err)
	}

	nodeInformer, err := mgr.GetCache().GetInformer(ctx, &v1.Node{})
	if err != nil {
		return fmt.Errorf("getting node informer: %w", err)
	}
	if _, err := nodeInformer.AddEventHandler(cache.ResourceEventHandlerFuncs{
		AddFunc:    func(any) { loop.Trigger() },
		UpdateFunc: func(any, any) { loop.Trigger() },
	}); err != nil {
		return fmt.Errorf("registering node event handler: %w", err)
	}
	return nil
}

// startWithGracePeriod runs the manager until ctx is cancelled, then waits
// up to gracePeriod for mgr.Start to return on its own before giving up and
// returning whatever error is available, so an in-flight scheduling pass
// gets a bounded window to finish binding rather than being killed outright.
func startWithGracePeriod(ctx context.Context, mgr manager.Manager, gracePeriod time.Duration, logger *zap.SugaredLogger) error {
	done := make(chan error, 1)
	go func() { done <- mgr.Start(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
	}

	select {
	case err := <-done:
		return err
	case <-time.After(gracePeriod):
		logger.Warnw("shutdown grace period elapsed before manager finished draining")
		return nil
	}
}

// buildRestConfig loads an explicit kubeconfig path when given, otherwise
// falls back to in-cluster config via controller-runtime's resolver, which
// itself falls back to ~/.kube/config for local development.
func buildRestConfig(kubeconfig string) (*rest.Config, error) {
	if kubeconfig != "" {
		return clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	return config.GetConfig()
}
