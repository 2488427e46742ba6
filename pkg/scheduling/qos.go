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

import v1 "k8s.io/api/core/v1"

// priorityKey maps a pod's QoS class to the integer key pods are ordered
// by ahead of a placement pass: lower runs first. Guaranteed pods are
// served before Burstable, which in turn are served before BestEffort and
// anything the API server left unclassified.
func priorityKey(pod *v1.Pod) int {
	switch qosClass(pod) {
	case v1.PodQOSGuaranteed:
		return -997
	case v1.PodQOSBurstable:
		return 0
	case v1.PodQOSBestEffort:
		return 1000
	default:
		return 1000
	}
}

// qosClass returns the pod's QoS class, computing it from container
// requests/limits when the API server hasn't already stamped
// status.qosClass (e.g. a pod built in a test fixture).
func qosClass(pod *v1.Pod) v1.PodQOSClass {
	if pod.Status.QOSClass != "" {
		return pod.Status.QOSClass
	}
	return computeQOSClass(pod)
}

// computeQOSClass mirrors the upstream kubelet rule: Guaranteed requires
// every container to set limits equal to requests for both cpu and memory;
// BestEffort requires no container to set any request or limit at all;
// anything else is Burstable.
func computeQOSClass(pod *v1.Pod) v1.PodQOSClass {
	isGuaranteed := true
	isBestEffort := true
	for _, c := range pod.Spec.Containers {
		if len(c.Resources.Requests) > 0 || len(c.Resources.Limits) > 0 {
			isBestEffort = false
		}
		for _, name := range []v1.ResourceName{v1.ResourceCPU, v1.ResourceMemory} {
			req, hasReq := c.Resources.Requests[name]
			lim, hasLim := c.Resources.Limits[name]
			if !hasReq || !hasLim || req.Cmp(lim) != 0 {
				isGuaranteed = false
			}
		}
	}
	if len(pod.Spec.Containers) == 0 {
		return v1.PodQOSBestEffort
	}
	if isBestEffort {
		return v1.PodQOSBestEffort
	}
	if isGuaranteed {
		return v1.PodQOSGuaranteed
	}
	return v1.PodQOSBurstable
}
