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

// Package events publishes the per-pod Scheduled/FailedScheduling events
// the binder emits. This is purely observational: nothing here feeds back
// into placement.
package events

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	v1 "k8s.io/api/core/v1"
	"k8s.io/client-go/tools/record"
)

const dedupeTimeout = 2 * time.Minute

// Recorder publishes Kubernetes events for pod scheduling outcomes,
// deduplicating repeats of the same (pod, reason) pair within
// dedupeTimeout so a flapping bind failure doesn't spam the event log.
type Recorder struct {
	rec   record.EventRecorder
	cache *cache.Cache
}

func NewRecorder(rec record.EventRecorder) *Recorder {
	return &Recorder{
		rec:   rec,
		cache: cache.New(dedupeTimeout, 10*time.Second),
	}
}

// Scheduled publishes a normal "Scheduled" event for a pod that was
// successfully bound to a node.
func (r *Recorder) Scheduled(pod *v1.Pod, nodeName string) {
	r.publish(pod, v1.EventTypeNormal, "Scheduled", fmt.Sprintf("Successfully assigned %s/%s to %s", pod.Namespace, pod.Name, nodeName))
}

// FailedScheduling publishes a warning event for a pod that could not be
// placed or bound.
func (r *Recorder) FailedScheduling(pod *v1.Pod, reason string) {
	r.publish(pod, v1.EventTypeWarning, "FailedScheduling", reason)
}

func (r *Recorder) publish(pod *v1.Pod, eventType, reason, message string) {
	key := pod.Namespace + "/" + pod.Name + "/" + reason + "/" + message
	if _, exists := r.cache.Get(key); exists {
		return
	}
	r.cache.Set(key, nil, dedupeTimeout)
	r.rec.Event(pod, eventType, reason, message)
}
