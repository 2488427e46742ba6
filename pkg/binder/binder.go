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

// Package binder applies a TargetState by issuing binding subresource
// requests for every newly assigned pod. Nothing in a pass is retried here
// — the reconcile loop is the sole retry mechanism, via the next debounced
// pass naturally re-attempting pods that are still unbound.
package binder

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/multierr"
	v1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	corev1client "k8s.io/client-go/kubernetes/typed/core/v1"
	"knative.dev/pkg/logging"

	"github.com/ThomasK33/kube-scheduler-go/pkg/events"
	"github.com/ThomasK33/kube-scheduler-go/pkg/metrics"
	"github.com/ThomasK33/kube-scheduler-go/pkg/scheduling"
)

// BindFailedError is returned for a bind attempt that the API server
// rejected with neither a success nor a benign conflict status.
type BindFailedError struct {
	Pod        types.NamespacedName
	NodeName   string
	StatusCode int
	Cause      error
}

func (e *BindFailedError) Error() string {
	return fmt.Sprintf("binding %s to %s: status %d: %s", e.Pod, e.NodeName, e.StatusCode, e.Cause)
}
func (e *BindFailedError) Unwrap() error { return e.Cause }

// Binder issues bind subresource requests against the raw REST client
// rather than the generated CoreV1Interface.Pods().Bind() wrapper: the
// wrapper discards the HTTP status code, and spec.md's success check
// requires the numeric [200,202] range rather than just "err == nil".
type Binder struct {
	CoreV1        corev1client.CoreV1Interface
	SchedulerName string
	Recorder      *events.Recorder

	// bind performs one bind attempt. Defaults to bindOne (the real REST
	// call); tests substitute it to exercise Bind's aggregation logic
	// without a live API server.
	bind func(ctx context.Context, pod *v1.Pod, nodeName string) error
}

func New(coreV1 corev1client.CoreV1Interface, schedulerName string, recorder *events.Recorder) *Binder {
	b := &Binder{CoreV1: coreV1, SchedulerName: schedulerName, Recorder: recorder}
	b.bind = b.bindOne
	return b
}

// OverrideBindForTesting replaces the bind function used by Bind. Exposed
// for callers outside this package that need to exercise a Binder without a
// live API server, e.g. the reconcile loop's own tests.
func (b *Binder) OverrideBindForTesting(fn func(ctx context.Context, pod *v1.Pod, nodeName string) error) {
	b.bind = fn
}

// Bind issues a bind request for every pod in target.Assignments that was
// not already present under the same node in world.Assignments. Errors for
// independent pods are combined with multierr so one failing bind never
// stops the rest of the pass from being attempted.
func (b *Binder) Bind(ctx context.Context, world *scheduling.WorldState, target *scheduling.TargetState) error {
	logger := logging.FromContext(ctx)
	var errs error
	for nodeName, pods := range target.NewPods(world) {
		for _, pod := range pods {
			if err := b.bind(ctx, pod, nodeName); err != nil {
				logger.Errorw("bind failed", "pod", pod.Namespace+"/"+pod.Name, "node", nodeName, "error", err)
				b.Recorder.FailedScheduling(pod, err.Error())
				metrics.IncBindResult("failed")
				errs = multierr.Append(errs, err)
				continue
			}
			b.Recorder.Scheduled(pod, nodeName)
			metrics.IncBindResult("bound")
		}
	}
	for _, u := range target.StillUnscheduled {
		b.Recorder.FailedScheduling(u.Pod, string(u.Reason))
	}
	return errs
}

// bindOne issues one binding subresource create against the pod, recovering
// the HTTP status code through the REST client directly. A conflict or
// already-exists response is treated as the non-fatal informational outcome
// of idempotent rebinding, not an error.
func (b *Binder) bindOne(ctx context.Context, pod *v1.Pod, nodeName string) error {
	binding := &v1.Binding{
		ObjectMeta: metav1.ObjectMeta{
			Namespace: pod.Namespace,
			Name:      pod.Name,
			UID:       pod.UID,
		},
		Target: v1.ObjectReference{
			Kind: "Node",
			Name: nodeName,
		},
	}

	var statusCode int
	result := b.CoreV1.RESTClient().Post().
		Namespace(pod.Namespace).
		Resource("pods").
		Name(pod.Name).
		SubResource("binding").
		VersionedParams(&metav1.CreateOptions{FieldManager: b.SchedulerName}, metav1.ParameterCodec).
		Body(binding).
		Do(ctx)
	result.StatusCode(&statusCode)

	if err := result.Error(); err != nil {
		if apierrors.IsConflict(err) || apierrors.IsAlreadyExists(err) {
			return nil
		}
		return &BindFailedError{
			Pod:        types.NamespacedName{Namespace: pod.Namespace, Name: pod.Name},
			NodeName:   nodeName,
			StatusCode: statusCode,
			Cause:      err,
		}
	}
	if statusCode < http.StatusOK || statusCode > http.StatusAccepted {
		return &BindFailedError{
			Pod:        types.NamespacedName{Namespace: pod.Namespace, Name: pod.Name},
			NodeName:   nodeName,
			StatusCode: statusCode,
			Cause:      fmt.Errorf("unexpected status code"),
		}
	}
	return nil
}
