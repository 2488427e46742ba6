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

// Package scheduling implements the bin-packing placement algorithm: it
// takes a point-in-time WorldState and produces a TargetState assigning as
// many unscheduled pods to nodes as feasibility and capacity allow.
package scheduling

import v1 "k8s.io/api/core/v1"

// WorldState is an immutable, point-in-time snapshot of cluster state
// relevant to one scheduling pass.
type WorldState struct {
	Nodes           []*v1.Node
	UnscheduledPods []*v1.Pod
	Assignments     map[string][]*v1.Pod
}

// PodsOn returns the pods already assigned to node by name, or nil.
func (w *WorldState) PodsOn(nodeName string) []*v1.Pod {
	return w.Assignments[nodeName]
}

// Reason is the closed set of rejection reasons a pod can be left
// unscheduled with. Every rejection carries one; silent drops are not
// permitted.
type Reason string

const (
	NoFeasibleNode    Reason = "NoFeasibleNode"
	MissingNodeName   Reason = "MissingNodeName"
	MissingNodeRecord Reason = "MissingNodeRecord"
)

// Unscheduled pairs a pod with the reason it could not be placed in this
// pass.
type Unscheduled struct {
	Pod    *v1.Pod
	Reason Reason
}

// TargetState is the output of one placement pass: WorldState.Assignments
// plus newly placed pods, and the pods that could not be placed.
type TargetState struct {
	Assignments      map[string][]*v1.Pod
	StillUnscheduled []Unscheduled
}

// NewPods returns, per node, only the pods in t.Assignments that were not
// already present under that node name in the WorldState this TargetState
// was computed from. The binder issues bind requests for exactly these.
func (t *TargetState) NewPods(from *WorldState) map[string][]*v1.Pod {
	added := map[string][]*v1.Pod{}
	for node, pods := range t.Assignments {
		existing := podSet(from.Assignments[node])
		for _, p := range pods {
			if _, ok := existing[podKey(p)]; ok {
				continue
			}
			added[node] = append(added[node], p)
		}
	}
	return added
}

func podSet(pods []*v1.Pod) map[string]struct{} {
	set := make(map[string]struct{}, len(pods))
	for _, p := range pods {
		set[podKey(p)] = struct{}{}
	}
	return set
}

func podKey(p *v1.Pod) string {
	return p.Namespace + "/" + p.Name
}
