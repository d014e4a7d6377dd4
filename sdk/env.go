package sdk

// Env carries the per-call execution context: who signed the call and when
// it runs. Every engine entry point receives one; the engine never reads
// wall-clock time on its own.
type Env struct {
	Sender    Address
	Timestamp int64 // unix seconds
	TxID      string
}

// At returns a copy of the env shifted to the given timestamp. Tests use it
// to step through election windows without rebuilding the whole env.
func (e Env) At(ts int64) Env {
	e.Timestamp = ts
	return e
}
