package param

import (
	"sync"
	"sync/atomic"

	"github.com/justyntemme/sushi-go/pkg/id"
)

// StringValue is the atomic backing store for a string parameter.
// Grounded on the same single-writer/many-reader discipline as Value,
// generalized to reference types via atomic.Pointer so Get never
// blocks — a STRING_PROPERTY_CHANGE delivered to a processor's
// ProcessAudio/ProcessEvent on the audio thread must be able to read
// the new text without a lock, same as Value.Get (spec.md §4.7).
type StringValue struct {
	desc    Descriptor
	current atomic.Pointer[string]
}

// NewStringValue creates an empty StringValue for desc; callers set
// the initial text with Set immediately after registration.
func NewStringValue(desc Descriptor) *StringValue {
	v := &StringValue{desc: desc}
	empty := ""
	v.current.Store(&empty)
	return v
}

func (v *StringValue) Descriptor() Descriptor { return v.desc }

func (v *StringValue) Set(s string) {
	v.current.Store(&s)
}

func (v *StringValue) Get() string {
	return *v.current.Load()
}

// Registry owns every parameter a single processor has registered,
// keyed by ObjectID, preserving registration order for indexed
// listing. Grounded on justyntemme/vst3go's pkg/framework/param
// Registry, extended with a Freeze so registration can be forbidden
// once the owning processor enters the live graph (spec.md §4.2:
// "Registration after activation is forbidden"). Freeze also lets Get
// and GetString skip the mutex entirely once frozen: the map is never
// written again after Freeze, so a frozen Registry's maps are safe to
// read without locking from the audio thread (spec.md §4.7), which
// drainToRt's per-event parameter lookups depend on.
type Registry struct {
	mu      sync.RWMutex
	values  map[id.ObjectID]*Value
	strings map[id.ObjectID]*StringValue
	order   []id.ObjectID
	frozen  atomic.Bool
}

// NewRegistry creates an empty, unfrozen Registry.
func NewRegistry() *Registry {
	return &Registry{
		values:  make(map[id.ObjectID]*Value),
		strings: make(map[id.ObjectID]*StringValue),
	}
}

// RegisterFloat registers a float/int/bool-backed parameter (integer
// and bool parameters use the same atomic float storage, rounded or
// truncated at read time by the caller) and returns its ObjectID
// handle. Panics if the registry is frozen.
func (r *Registry) RegisterFloat(shortName, displayName string, def, min, max float32, pre PreProcessor) id.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		panic("param: register after activation is forbidden")
	}
	pid := id.NewObject()
	desc := Descriptor{ID: pid, ShortName: shortName, DisplayName: displayName, Default: def, Min: min, Max: max, PreProcessor: pre}
	r.values[pid] = NewValue(desc)
	r.order = append(r.order, pid)
	return pid
}

// RegisterString registers a string parameter and returns its handle.
func (r *Registry) RegisterString(shortName, displayName, def string) id.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		panic("param: register after activation is forbidden")
	}
	pid := id.NewObject()
	desc := Descriptor{ID: pid, ShortName: shortName, DisplayName: displayName}
	sv := NewStringValue(desc)
	sv.Set(def)
	r.strings[pid] = sv
	r.order = append(r.order, pid)
	return pid
}

// Freeze forbids further registration. Called when the owning
// processor is added to the live graph.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen.Store(true)
	r.mu.Unlock()
}

// Get returns the float Value for pid, or nil if pid is not a
// float parameter in this registry. Once the registry is frozen this
// reads the map directly, without taking mu, so it is safe to call
// from the audio thread; before freezing it takes the read lock, since
// registration may still be racing it from a control thread.
func (r *Registry) Get(pid id.ObjectID) *Value {
	if r.frozen.Load() {
		return r.values[pid]
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.values[pid]
}

// GetString returns the StringValue for pid, or nil if pid is not a
// string parameter in this registry. See Get for the frozen fast path.
func (r *Registry) GetString(pid id.ObjectID) *StringValue {
	if r.frozen.Load() {
		return r.strings[pid]
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.strings[pid]
}

// List returns every parameter's Descriptor, in registration order.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.order))
	for _, pid := range r.order {
		if v, ok := r.values[pid]; ok {
			out = append(out, v.Descriptor())
			continue
		}
		if v, ok := r.strings[pid]; ok {
			out = append(out, v.Descriptor())
		}
	}
	return out
}
