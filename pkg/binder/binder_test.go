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

package binder

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/tools/record"
	"knative.dev/pkg/logging"

	"github.com/ThomasK33/kube-scheduler-go/pkg/events"
	"github.com/ThomasK33/kube-scheduler-go/pkg/scheduling"
)

func testPod(ns, name string) *v1.Pod {
	return &v1.Pod{ObjectMeta: metav1.ObjectMeta{Namespace: ns, Name: name}}
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func newTestBinder(bindErrs map[string]error) *Binder {
	b := New(nil, "kube-scheduler-go", events.NewRecorder(record.NewFakeRecorder(64)))
	b.bind = func(_ context.Context, pod *v1.Pod, nodeName string) error {
		if err, ok := bindErrs[pod.Namespace+"/"+pod.Name]; ok {
			return err
		}
		return nil
	}
	return b
}

func TestBindOnlyBindsNewAssignments(t *testing.T) {
	p1 := testPod("default", "p1")
	world := &scheduling.WorldState{Assignments: map[string][]*v1.Pod{}}
	target := &scheduling.TargetState{Assignments: map[string][]*v1.Pod{"n1": {p1}}}

	attempted := map[string]bool{}
	b := newTestBinder(nil)
	b.bind = func(_ context.Context, pod *v1.Pod, nodeName string) error {
		attempted[pod.Namespace+"/"+pod.Name] = true
		return nil
	}

	ctx := logging.WithLogger(context.Background(), testLogger())
	if err := b.Bind(ctx, world, target); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !attempted["default/p1"] {
		t.Fatalf("expected p1 to be bound")
	}
}

func TestBindSkipsAlreadyAssignedPods(t *testing.T) {
	p1 := testPod("default", "p1")
	world := &scheduling.WorldState{Assignments: map[string][]*v1.Pod{"n1": {p1}}}
	target := &scheduling.TargetState{Assignments: map[string][]*v1.Pod{"n1": {p1}}}

	attempted := false
	b := newTestBinder(nil)
	b.bind = func(_ context.Context, pod *v1.Pod, nodeName string) error {
		attempted = true
		return nil
	}

	ctx := logging.WithLogger(context.Background(), testLogger())
	if err := b.Bind(ctx, world, target); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempted {
		t.Fatalf("expected already-assigned pod to not be re-bound")
	}
}

func TestBindCombinesIndependentErrorsAndContinues(t *testing.T) {
	p1, p2 := testPod("default", "p1"), testPod("default", "p2")
	world := &scheduling.WorldState{Assignments: map[string][]*v1.Pod{}}
	target := &scheduling.TargetState{Assignments: map[string][]*v1.Pod{"n1": {p1, p2}}}

	b := newTestBinder(map[string]error{"default/p1": errors.New("boom")})
	attempted := map[string]bool{}
	realBind := b.bind
	b.bind = func(ctx context.Context, pod *v1.Pod, nodeName string) error {
		attempted[pod.Namespace+"/"+pod.Name] = true
		return realBind(ctx, pod, nodeName)
	}

	ctx := logging.WithLogger(context.Background(), testLogger())
	err := b.Bind(ctx, world, target)
	if err == nil {
		t.Fatalf("expected a combined error for p1's failed bind")
	}
	if !attempted["default/p1"] || !attempted["default/p2"] {
		t.Fatalf("expected both pods to be attempted despite p1 failing, got %v", attempted)
	}
}
