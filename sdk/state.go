package sdk

// State is the kv storage surface the engine runs against. The production
// host provides a durable implementation; tests use MemState.
type State interface {
	Set(key, value string)
	Get(key string) *string
	Delete(key string)
}

// MemState is a plain in-memory State for tests and dry runs.
type MemState struct {
	db map[string]string
}

func NewMemState() *MemState {
	return &MemState{db: make(map[string]string)}
}

func (m *MemState) Set(key, value string) {
	m.db[key] = value
}

func (m *MemState) Get(key string) *string {
	val, ok := m.db[key]
	if !ok {
		return nil
	}
	return &val
}

func (m *MemState) Delete(key string) {
	delete(m.db, key)
}

// Len reports the number of live keys, handy for cleanup assertions.
func (m *MemState) Len() int {
	return len(m.db)
}
