package memo

import "fmt"

// PoisonedError reports that the factory for a key panicked while
// computing its slot. The slot stays poisoned: the same error is delivered
// to every caller blocked on the key at the time of the failure and to
// every later caller for that key.
type PoisonedError struct {
	// Key is the key whose computation failed.
	Key any
	// Cause is the value recovered from the factory's panic.
	Cause any
}

func (e *PoisonedError) Error() string {
	return fmt.Sprintf("memo: slot for key %v poisoned by factory panic: %v", e.Key, e.Cause)
}
