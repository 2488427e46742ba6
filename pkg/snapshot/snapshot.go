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

// Package snapshot builds one WorldState per scheduling pass from the
// cluster API: list nodes, list unscheduled pods owned by this scheduler,
// then list the pods currently bound to each node.
package snapshot

import (
	"context"
	"fmt"

	v1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/ThomasK33/kube-scheduler-go/pkg/scheduling"
)

// SpecNodeNameField and SpecSchedulerNameField are the cache field indices
// this snapshotter requires to be registered on the manager's field indexer
// before use (see RegisterIndices). They turn the node-name and
// scheduler-name list filters below into indexed lookups rather than full
// list-and-filter scans.
const (
	SpecNodeNameField      = "spec.nodeName"
	SpecSchedulerNameField = "spec.schedulerName"
)

// RegisterIndices wires the two field indices this package's List calls
// depend on. Call once against the manager's cache before starting the
// reconcile loop; this is the real implementation of what the teacher
// carries as commented-out cache.IndexField calls in its test environment
// bootstrap.
func RegisterIndices(ctx context.Context, indexer client.FieldIndexer) error {
	if err := indexer.IndexField(ctx, &v1.Pod{}, SpecNodeNameField, func(obj client.Object) []string {
		pod := obj.(*v1.Pod)
		return []string{pod.Spec.NodeName}
	}); err != nil {
		return fmt.Errorf("indexing %s: %w", SpecNodeNameField, err)
	}
	if err := indexer.IndexField(ctx, &v1.Pod{}, SpecSchedulerNameField, func(obj client.Object) []string {
		pod := obj.(*v1.Pod)
		return []string{pod.Spec.SchedulerName}
	}); err != nil {
		return fmt.Errorf("indexing %s: %w", SpecSchedulerNameField, err)
	}
	return nil
}

// SnapshotFailedError wraps any cluster API list failure encountered while
// building a WorldState. The reconcile loop treats this as transient.
type SnapshotFailedError struct {
	Cause error
}

func (e *SnapshotFailedError) Error() string { return fmt.Sprintf("snapshot failed: %s", e.Cause) }
func (e *SnapshotFailedError) Unwrap() error  { return e.Cause }

// Snapshotter builds a WorldState per pass against a cached
// controller-runtime client, mirroring the dual-client shape of the
// teacher's Provisioner (kubeClient client.Client + coreV1Client
// corev1.CoreV1Interface) — only the cached client.Client half is needed
// here since listing is read-only; the raw client-go client lives in
// pkg/binder, where status codes must be recovered.
type Snapshotter struct {
	Client        client.Client
	SchedulerName string
}

func NewSnapshotter(c client.Client, schedulerName string) *Snapshotter {
	return &Snapshotter{Client: c, SchedulerName: schedulerName}
}

// Snapshot lists nodes, then this scheduler's unscheduled pods, then the
// pods bound to each node, assembling one WorldState. Lists are taken
// without transactional guarantees across the three calls; the result is
// point-in-time best-effort.
func (s *Snapshotter) Snapshot(ctx context.Context) (*scheduling.WorldState, error) {
	var nodeList v1.NodeList
	if err := s.Client.List(ctx, &nodeList); err != nil {
		return nil, &SnapshotFailedError{Cause: fmt.Errorf("listing nodes: %w", err)}
	}

	var unscheduledList v1.PodList
	if err := s.Client.List(ctx, &unscheduledList, client.MatchingFields{
		SpecNodeNameField:      "",
		SpecSchedulerNameField: s.SchedulerName,
	}); err != nil {
		return nil, &SnapshotFailedError{Cause: fmt.Errorf("listing unscheduled pods: %w", err)}
	}

	nodes := make([]*v1.Node, len(nodeList.Items))
	assignments := make(map[string][]*v1.Pod, len(nodeList.Items))
	for i := range nodeList.Items {
		n := &nodeList.Items[i]
		nodes[i] = n

		var boundList v1.PodList
		if err := s.Client.List(ctx, &boundList, client.MatchingFields{SpecNodeNameField: n.Name}); err != nil {
			return nil, &SnapshotFailedError{Cause: fmt.Errorf("listing pods bound to node %s: %w", n.Name, err)}
		}
		pods := make([]*v1.Pod, len(boundList.Items))
		for j := range boundList.Items {
			pods[j] = &boundList.Items[j]
		}
		assignments[n.Name] = pods
	}

	unscheduledPods := make([]*v1.Pod, len(unscheduledList.Items))
	for i := range unscheduledList.Items {
		unscheduledPods[i] = &unscheduledList.Items[i]
	}

	return &scheduling.WorldState{
		Nodes:           nodes,
		UnscheduledPods: unscheduledPods,
		Assignments:     assignments,
	}, nil
}
