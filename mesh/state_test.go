package mesh

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestStateTracker_Empty(t *testing.T) {
	st := NewStateTracker()
	if st.HasResult() {
		t.Error("new tracker should have no result")
	}
	if st.Alignment() != nil || st.Report() != nil || st.LastError() != nil {
		t.Error("new tracker should hold nothing")
	}
	if !st.LastUpdated().IsZero() {
		t.Error("LastUpdated should be zero before any update")
	}
}

func TestStateTracker_UpdateAndError(t *testing.T) {
	st := NewStateTracker()
	al := &Alignment{Poses: []Pose{{Transform: IdentityTransform()}}, Scanners: []Scanner{{}}}
	r := &Report{RunID: "a"}

	before := time.Now()
	st.Update(al, r)
	if !st.HasResult() || st.Alignment() != al || st.Report() != r {
		t.Fatal("Update did not store the result")
	}
	if st.LastUpdated().Before(before) {
		t.Error("LastUpdated not advanced")
	}

	boom := errors.New("boom")
	st.SetError(boom)
	if !errors.Is(st.LastError(), boom) {
		t.Errorf("LastError() = %v", st.LastError())
	}
	// Last good result is kept
	if st.Alignment() != al {
		t.Error("SetError dropped the previous alignment")
	}

	st.Update(al, &Report{RunID: "b"})
	if st.LastError() != nil {
		t.Error("Update should clear the last error")
	}
	if st.Report().RunID != "b" {
		t.Errorf("Report().RunID = %q, want b", st.Report().RunID)
	}
}

func TestStateTracker_Concurrent(t *testing.T) {
	st := NewStateTracker()
	al := &Alignment{}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			st.Update(al, &Report{})
		}()
		go func() {
			defer wg.Done()
			_ = st.HasResult()
			_ = st.Report()
		}()
	}
	wg.Wait()

	if !st.HasResult() {
		t.Error("expected a result after concurrent updates")
	}
}
