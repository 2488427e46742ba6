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

package scheduling

import (
	"sort"

	"github.com/samber/lo"
	v1 "k8s.io/api/core/v1"

	"github.com/ThomasK33/kube-scheduler-go/pkg/filters"
	"github.com/ThomasK33/kube-scheduler-go/pkg/resources"
)

// Schedule runs the single-pass, greedy bin-packing placement algorithm
// over world, producing the TargetState of pods newly assigned to nodes
// plus every pod that could not be placed in this pass, with a reason.
//
// The algorithm never revisits an earlier decision: once a pod is placed
// or rejected, later pods in the ordering cannot change that outcome.
func Schedule(world *WorldState) *TargetState {
	target := &TargetState{
		Assignments: cloneAssignments(world.Assignments),
	}

	pods := orderedPods(world.UnscheduledPods)
	for _, pod := range pods {
		node := selectNode(world, target, pod)
		if node == nil {
			target.StillUnscheduled = append(target.StillUnscheduled, Unscheduled{Pod: pod, Reason: NoFeasibleNode})
			continue
		}
		if node.Name == "" {
			target.StillUnscheduled = append(target.StillUnscheduled, Unscheduled{Pod: pod, Reason: MissingNodeName})
			continue
		}
		target.Assignments[node.Name] = append(target.Assignments[node.Name], pod)
	}
	return target
}

// orderedPods sorts pods ascending by QoS-derived priority key, ties broken
// by (namespace, name) for determinism.
func orderedPods(pods []*v1.Pod) []*v1.Pod {
	ordered := make([]*v1.Pod, len(pods))
	copy(ordered, pods)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := priorityKey(ordered[i]), priorityKey(ordered[j])
		if pi != pj {
			return pi < pj
		}
		if ordered[i].Namespace != ordered[j].Namespace {
			return ordered[i].Namespace < ordered[j].Namespace
		}
		return ordered[i].Name < ordered[j].Name
	})
	return ordered
}

// selectNode filters world.Nodes down to the pod's feasible candidates
// (against the in-progress target assignments, so pods already placed
// earlier in this pass count against capacity) and scores them by
// resulting bin-packing utilization, returning the winner or nil if none
// are feasible.
func selectNode(world *WorldState, target *TargetState, pod *v1.Pod) *v1.Node {
	candidates := lo.Filter(world.Nodes, func(n *v1.Node, _ int) bool {
		if n == nil {
			return false
		}
		assigned := target.Assignments[n.Name]
		return filters.IsNodeSchedulable(n) &&
			filters.IsPodAllocatable(n, pod, assigned) &&
			filters.IsPodTaintTolerationFulfilled(n, pod) &&
			filters.IsPodAffinityFulfilled(n, pod, assigned) &&
			filters.IsPodAntiAffinityFulfilled(n, pod, assigned)
	})
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		si := scoreAfterPlacing(candidates[i], pod, target.Assignments[candidates[i].Name])
		sj := scoreAfterPlacing(candidates[j], pod, target.Assignments[candidates[j].Name])
		if si != sj {
			return si > sj // descending: most utilized after placement wins
		}
		ni := len(target.Assignments[candidates[i].Name])
		nj := len(target.Assignments[candidates[j].Name])
		if ni != nj {
			return ni < nj // fewer pods already on node wins
		}
		return candidates[i].Name < candidates[j].Name
	})
	return candidates[0]
}

// scoreAfterPlacing returns utilization(cpu) + utilization(memory) for
// node, as it would be immediately after pod is hypothetically added to
// assigned.
func scoreAfterPlacing(node *v1.Node, pod *v1.Pod, assigned []*v1.Pod) float64 {
	used := resources.Merge(resources.RequestsForPods(assigned...), resources.Requests(pod))
	return resources.UtilizationRatio(used, node.Status.Allocatable, v1.ResourceCPU) +
		resources.UtilizationRatio(used, node.Status.Allocatable, v1.ResourceMemory)
}

func cloneAssignments(in map[string][]*v1.Pod) map[string][]*v1.Pod {
	out := make(map[string][]*v1.Pod, len(in))
	for node, pods := range in {
		cloned := make([]*v1.Pod, len(pods))
		copy(cloned, pods)
		out[node] = cloned
	}
	return out
}
