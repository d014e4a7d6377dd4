package contract

import "vesta_dao/sdk"

// txState overlays a write set on a base state so an entry point either
// commits all of its mutations or none of them. Reads see staged writes
// first, then fall through to the base.
type txState struct {
	base   sdk.State
	writes map[string]*string // nil value marks a staged delete
}

func newTxState(base sdk.State) *txState {
	return &txState{
		base:   base,
		writes: make(map[string]*string),
	}
}

func (t *txState) Get(key string) *string {
	if v, staged := t.writes[key]; staged {
		if v == nil {
			return nil
		}
		cp := *v
		return &cp
	}
	return t.base.Get(key)
}

func (t *txState) Set(key string, value string) {
	v := value
	t.writes[key] = &v
}

func (t *txState) Delete(key string) {
	t.writes[key] = nil
}

func (t *txState) commit() {
	for k, v := range t.writes {
		if v == nil {
			t.base.Delete(k)
		} else {
			t.base.Set(k, *v)
		}
	}
	t.writes = make(map[string]*string)
}
