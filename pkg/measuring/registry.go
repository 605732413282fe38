package measuring

// Key identifies a registered measurement. Keys are assigned in
// registration order and stay valid for the lifetime of the registry.
type Key uint32

// Measurement is a registered measurement class.
type Measurement struct {
	Name    string
	Columns []string
}

// Registry maps keys to measurement names. It only grows.
type Registry struct {
	entries []Measurement
}

// Register appends a measurement and returns its key. Registering the same
// name twice yields two keys.
func (r *Registry) Register(name string, columns []string) Key {
	r.entries = append(r.entries, Measurement{Name: name, Columns: append([]string(nil), columns...)})
	return Key(len(r.entries) - 1)
}

// Lookup returns the measurement registered under k.
func (r *Registry) Lookup(k Key) (Measurement, bool) {
	if int(k) >= len(r.entries) {
		return Measurement{}, false
	}
	return r.entries[k], true
}

// Len returns the number of registered measurements.
func (r *Registry) Len() int { return len(r.entries) }
