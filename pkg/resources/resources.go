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

// Package resources aggregates v1.ResourceList values for filtering and
// scoring. The API surface (Merge, Subtract, RequestsForPods, Fits) mirrors
// the teacher's pkg/utils/resources package, reconstructed from its call
// sites in pkg/controllers/provisioning/scheduling/existingnode.go.
package resources

import (
	v1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/ThomasK33/kube-scheduler-go/pkg/quantity"
)

// Requests sums a single pod's container resource requests by resource
// name. Init containers are ignored: this scheduler targets steady-state
// placement, not startup-phase sizing.
func Requests(pod *v1.Pod) v1.ResourceList {
	total := v1.ResourceList{}
	for _, c := range pod.Spec.Containers {
		for name, qty := range c.Resources.Requests {
			add(total, name, qty)
		}
	}
	return total
}

// RequestsForPods sums Requests across every pod given.
func RequestsForPods(pods ...*v1.Pod) v1.ResourceList {
	total := v1.ResourceList{}
	for _, p := range pods {
		for name, qty := range Requests(p) {
			add(total, name, qty)
		}
	}
	return total
}

// Merge combines any number of resource lists, summing quantities that
// appear in more than one.
func Merge(lists ...v1.ResourceList) v1.ResourceList {
	total := v1.ResourceList{}
	for _, l := range lists {
		for name, qty := range l {
			add(total, name, qty)
		}
	}
	return total
}

// Subtract returns a - b, saturating each resource name at zero rather than
// going negative.
func Subtract(a, b v1.ResourceList) v1.ResourceList {
	result := v1.ResourceList{}
	for name, qty := range a {
		result[name] = qty.DeepCopy()
	}
	for name, bQty := range b {
		aQty, ok := result[name]
		if !ok {
			continue
		}
		diff := quantity.FromK8s(aQty).SubSaturating(quantity.FromK8s(bQty))
		result[name] = diff.ToK8s()
	}
	return result
}

// Fits reports whether every resource in requested is present in allocatable
// with a sufficient quantity. An unknown resource name on the allocatable
// side (i.e. requested for a resource allocatable doesn't carry at all)
// means the request does not fit.
func Fits(requested, allocatable v1.ResourceList) bool {
	for name, req := range requested {
		avail, ok := allocatable[name]
		if !ok {
			return false
		}
		if quantity.FromK8s(avail).LessThan(quantity.FromK8s(req)) {
			return false
		}
	}
	return true
}

// UtilizationRatio returns used(name)/allocatable(name) clamped to [0, 1].
// A missing or zero allocatable amount is treated as fully utilized only if
// some amount is actually used; otherwise it contributes zero utilization.
func UtilizationRatio(used, allocatable v1.ResourceList, name v1.ResourceName) float64 {
	usedQty := quantity.FromK8s(used[name])
	allocQty, ok := allocatable[name]
	if !ok || quantity.FromK8s(allocQty).IsZero() {
		if usedQty.IsZero() {
			return 0
		}
		return 1
	}
	ratio := usedQty.AsApproximateFloat64() / quantity.FromK8s(allocQty).AsApproximateFloat64()
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

func add(list v1.ResourceList, name v1.ResourceName, qty resource.Quantity) {
	if existing, ok := list[name]; ok {
		sum := quantity.FromK8s(existing).Add(quantity.FromK8s(qty))
		list[name] = sum.ToK8s()
		return
	}
	list[name] = qty.DeepCopy()
}
