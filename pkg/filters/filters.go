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

// Package filters implements the node-predicate library: the set of
// independent pass/fail checks a (node, pod, assigned-pods) triple must
// clear before the node is a placement candidate. Each predicate here is
// grounded on the equivalent check in the teacher's
// pkg/controllers/provisioning/scheduling/existingnode.go, generalized to
// run against any already-scheduled node rather than only
// provisioner-created ones.
package filters

import (
	v1 "k8s.io/api/core/v1"

	"github.com/ThomasK33/kube-scheduler-go/pkg/resources"
)

// IsNodeSchedulable reports whether a node is eligible to receive new pods
// at all: it must be Ready and must not be marked unschedulable.
func IsNodeSchedulable(node *v1.Node) bool {
	if node.Spec.Unschedulable {
		return false
	}
	for _, cond := range node.Status.Conditions {
		if cond.Type == v1.NodeReady {
			return cond.Status == v1.ConditionTrue
		}
	}
	return false
}

// IsPodAllocatable reports whether the pod's resource requests fit within
// the node's allocatable capacity, after accounting for what the pods
// already assigned to the node (assigned) are requesting.
func IsPodAllocatable(node *v1.Node, pod *v1.Pod, assigned []*v1.Pod) bool {
	used := resources.RequestsForPods(assigned...)
	remaining := resources.Subtract(node.Status.Allocatable, used)
	return resources.Fits(resources.Requests(pod), remaining)
}

// IsPodTaintTolerationFulfilled reports whether the pod tolerates every
// NoSchedule/NoExecute taint on the node.
func IsPodTaintTolerationFulfilled(node *v1.Node, pod *v1.Pod) bool {
	return Taints(node.Spec.Taints).Tolerates(pod) == nil
}

// IsPodAffinityFulfilled reports whether the node satisfies the pod's node
// selector, required node affinity, and required pod affinity terms.
//
// Pod affinity terms are evaluated against the pods already assigned to
// this candidate node rather than across the full cluster topology: the
// scheduler's world-state snapshot carries per-node pod assignments but no
// cross-node topology-domain index (no zone/region label grouping), so
// "the domain containing at least one matching pod" degrades to "this
// node, if it already hosts a match". A term's topology key is not
// consulted: every required term, whatever key it names, is checked against
// this node's assigned pods only; this is a deliberate, documented
// simplification, not an oversight.
func IsPodAffinityFulfilled(node *v1.Node, pod *v1.Pod, assigned []*v1.Pod) bool {
	if !matchesRequiredNodeAffinity(node, pod) {
		return false
	}
	if pod.Spec.Affinity == nil || pod.Spec.Affinity.PodAffinity == nil {
		return true
	}
	for _, term := range pod.Spec.Affinity.PodAffinity.RequiredDuringSchedulingIgnoredDuringExecution {
		if !anyPodMatches(assigned, term) {
			return false
		}
	}
	return true
}

// IsPodAntiAffinityFulfilled reports whether placing the pod on this node
// would violate any required pod anti-affinity term, evaluated against the
// node's already-assigned pods under the same topology scoping documented
// on IsPodAffinityFulfilled.
func IsPodAntiAffinityFulfilled(node *v1.Node, pod *v1.Pod, assigned []*v1.Pod) bool {
	if pod.Spec.Affinity == nil || pod.Spec.Affinity.PodAntiAffinity == nil {
		return true
	}
	for _, term := range pod.Spec.Affinity.PodAntiAffinity.RequiredDuringSchedulingIgnoredDuringExecution {
		if anyPodMatches(assigned, term) {
			return false
		}
	}
	return true
}

func anyPodMatches(pods []*v1.Pod, term v1.PodAffinityTerm) bool {
	for _, p := range pods {
		if podMatchesLabelSelector(p, term) {
			return true
		}
	}
	return false
}
