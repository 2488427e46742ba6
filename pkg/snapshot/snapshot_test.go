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

package snapshot

import (
	"context"
	"testing"

	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
)

func newFakeClient(t *testing.T, objs ...client.Object) client.Client {
	t.Helper()
	scheme := runtime.NewScheme()
	if err := v1.AddToScheme(scheme); err != nil {
		t.Fatalf("registering scheme: %v", err)
	}
	builder := fake.NewClientBuilder().WithScheme(scheme).WithObjects(objs...)
	builder = builder.WithIndex(&v1.Pod{}, SpecNodeNameField, func(obj client.Object) []string {
		return []string{obj.(*v1.Pod).Spec.NodeName}
	})
	builder = builder.WithIndex(&v1.Pod{}, SpecSchedulerNameField, func(obj client.Object) []string {
		return []string{obj.(*v1.Pod).Spec.SchedulerName}
	})
	return builder.Build()
}

func TestSnapshotAssemblesWorldState(t *testing.T) {
	node1 := &v1.Node{ObjectMeta: metav1.ObjectMeta{Name: "n1"}}
	bound := &v1.Pod{
		ObjectMeta: metav1.ObjectMeta{Namespace: "default", Name: "bound"},
		Spec:       v1.PodSpec{NodeName: "n1", SchedulerName: "kube-scheduler-go"},
	}
	unscheduled := &v1.Pod{
		ObjectMeta: metav1.ObjectMeta{Namespace: "default", Name: "pending"},
		Spec:       v1.PodSpec{SchedulerName: "kube-scheduler-go"},
	}
	otherScheduler := &v1.Pod{
		ObjectMeta: metav1.ObjectMeta{Namespace: "default", Name: "ignored"},
		Spec:       v1.PodSpec{SchedulerName: "some-other-scheduler"},
	}

	c := newFakeClient(t, node1, bound, unscheduled, otherScheduler)
	snapshotter := NewSnapshotter(c, "kube-scheduler-go")

	world, err := snapshotter.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(world.Nodes) != 1 || world.Nodes[0].Name != "n1" {
		t.Fatalf("expected exactly node n1, got %v", world.Nodes)
	}
	if len(world.UnscheduledPods) != 1 || world.UnscheduledPods[0].Name != "pending" {
		t.Fatalf("expected exactly one unscheduled pod (pending), got %v", world.UnscheduledPods)
	}
	if len(world.Assignments["n1"]) != 1 || world.Assignments["n1"][0].Name != "bound" {
		t.Fatalf("expected bound pod under n1, got %v", world.Assignments["n1"])
	}
}

func TestSnapshotNoUnscheduledPodsIsNotAnError(t *testing.T) {
	c := newFakeClient(t, &v1.Node{ObjectMeta: metav1.ObjectMeta{Name: "n1"}})
	snapshotter := NewSnapshotter(c, "kube-scheduler-go")

	world, err := snapshotter.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(world.UnscheduledPods) != 0 {
		t.Fatalf("expected no unscheduled pods, got %v", world.UnscheduledPods)
	}
}
