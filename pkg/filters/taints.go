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
	"fmt"

	v1 "k8s.io/api/core/v1"
)

// Taints mirrors the teacher's scheduling.Taints(n.Taints()).Tolerates(pod)
// idiom: a taint list that knows how to check itself against a pod's
// tolerations.
type Taints []v1.Taint

// Tolerates returns nil if every blocking taint (NoSchedule, NoExecute) on
// the receiver is tolerated by one of the pod's tolerations.
// PreferNoSchedule taints never block feasibility.
func (ts Taints) Tolerates(pod *v1.Pod) error {
	for _, taint := range ts {
		if taint.Effect == v1.TaintEffectPreferNoSchedule {
			continue
		}
		if !tolerationsMatch(pod.Spec.Tolerations, taint) {
			return fmt.Errorf("taint %s=%s:%s is not tolerated", taint.Key, taint.Value, taint.Effect)
		}
	}
	return nil
}

func tolerationsMatch(tolerations []v1.Toleration, taint v1.Taint) bool {
	for _, t := range tolerations {
		if tolerationMatchesTaint(t, taint) {
			return true
		}
	}
	return false
}

func tolerationMatchesTaint(t v1.Toleration, taint v1.Taint) bool {
	if t.Effect != "" && t.Effect != taint.Effect {
		return false
	}
	switch t.Operator {
	case v1.TolerationOpExists, "":
		return t.Key == "" || t.Key == taint.Key
	case v1.TolerationOpEqual:
		return t.Key == taint.Key && t.Value == taint.Value
	default:
		return false
	}
}
