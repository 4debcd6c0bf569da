package rtsched

import "testing"

// PromoteCurrentThread is advisory: this only exercises that the call
// is safe to make and never panics, since CI environments typically
// lack CAP_SYS_NICE and Linux will legitimately return an error.
func TestPromoteCurrentThreadDoesNotPanic(t *testing.T) {
	_ = PromoteCurrentThread(50)
}
