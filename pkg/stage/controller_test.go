package stage

import "testing"

func intp(v int) *int { return &v }

func TestObserve_NilRetainsPrevious(t *testing.T) {
	c := NewController()
	c.Observe(intp(1))
	c.Observe(nil)

	if !c.ShowFieldMapping() {
		t.Fatal("tier 1 must stay visible after a turn without a stage")
	}
	if c.ShowConceptMapping() {
		t.Fatal("tier 2 must not appear from nowhere")
	}
}

func TestObserve_LowerStageDoesNotRegress(t *testing.T) {
	c := NewController()
	c.Observe(intp(2))
	c.Observe(intp(1))

	if got := c.Current(); got != 2 {
		t.Fatalf("current: want max seen 2, got %d", got)
	}
}

func TestObserve_Progression(t *testing.T) {
	c := NewController()
	if c.ShowFieldMapping() || c.ShowConceptMapping() {
		t.Fatal("fresh controller must show only tier 0")
	}
	c.Observe(intp(1))
	if !c.ShowFieldMapping() || c.ShowConceptMapping() {
		t.Fatal("stage 1 shows field mappings only")
	}
	c.Observe(intp(2))
	if !c.ShowConceptMapping() {
		t.Fatal("stage 2 shows concept tier")
	}
}

func TestReset(t *testing.T) {
	c := NewController()
	c.Observe(intp(2))
	c.Reset()
	if got := c.Current(); got != 0 {
		t.Fatalf("current after reset: want 0, got %d", got)
	}
}
