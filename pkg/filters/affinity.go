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

package filters

import (
	"strconv"

	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
)

// matchesNodeSelectorTerm reports whether a node's labels satisfy every
// MatchExpressions entry of a single term. Terms are OR'd together by the
// caller; expressions within a term are AND'd, per the upstream node
// affinity contract this package mirrors from the teacher's
// pkg/scheduling/requirements.go operator set (In, NotIn, Exists,
// DoesNotExist, Gt, Lt).
func matchesNodeSelectorTerm(nodeLabels map[string]string, term v1.NodeSelectorTerm) bool {
	for _, expr := range term.MatchExpressions {
		if !matchesExpression(nodeLabels, expr) {
			return false
		}
	}
	return true
}

func matchesExpression(nodeLabels map[string]string, expr v1.NodeSelectorRequirement) bool {
	value, present := nodeLabels[expr.Key]
	switch expr.Operator {
	case v1.NodeSelectorOpIn:
		return present && containsAny(expr.Values, value)
	case v1.NodeSelectorOpNotIn:
		return !present || !containsAny(expr.Values, value)
	case v1.NodeSelectorOpExists:
		return present
	case v1.NodeSelectorOpDoesNotExist:
		return !present
	case v1.NodeSelectorOpGt:
		return present && compareNumeric(value, expr.Values) > 0
	case v1.NodeSelectorOpLt:
		return present && compareNumeric(value, expr.Values) < 0
	default:
		return false
	}
}

func containsAny(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

// compareNumeric returns cmp(value, values[0]) for the Gt/Lt operators,
// which the API server restricts to exactly one comparison value. A
// non-numeric label value never satisfies a Gt/Lt requirement.
func compareNumeric(value string, values []string) int {
	if len(values) != 1 {
		return 0
	}
	lhs, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	rhs, err := strconv.ParseInt(values[0], 10, 64)
	if err != nil {
		return 0
	}
	switch {
	case lhs > rhs:
		return 1
	case lhs < rhs:
		return -1
	default:
		return 0
	}
}

// matchesRequiredNodeAffinity reports whether a node satisfies a pod's
// node selector and required node affinity terms. An empty/nil affinity is
// always satisfied. Node selector terms are OR'd, matching the upstream
// NodeSelectorTerms contract.
func matchesRequiredNodeAffinity(node *v1.Node, pod *v1.Pod) bool {
	if len(pod.Spec.NodeSelector) > 0 {
		if !labels.SelectorFromSet(pod.Spec.NodeSelector).Matches(labels.Set(node.Labels)) {
			return false
		}
	}
	affinity := pod.Spec.Affinity
	if affinity == nil || affinity.NodeAffinity == nil {
		return true
	}
	required := affinity.NodeAffinity.RequiredDuringSchedulingIgnoredDuringExecution
	if required == nil || len(required.NodeSelectorTerms) == 0 {
		return true
	}
	for _, term := range required.NodeSelectorTerms {
		if matchesNodeSelectorTerm(node.Labels, term) {
			return true
		}
	}
	return false
}

// podMatchesLabelSelector reports whether a candidate pod matches a pod
// (anti-)affinity term's label selector.
func podMatchesLabelSelector(candidate *v1.Pod, term v1.PodAffinityTerm) bool {
	if term.LabelSelector == nil {
		return true
	}
	selector, err := metav1.LabelSelectorAsSelector(term.LabelSelector)
	if err != nil {
		return false
	}
	return selector.Matches(labels.Set(candidate.Labels))
}
