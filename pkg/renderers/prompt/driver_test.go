package prompt

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSelectConfig_DefaultResolution(t *testing.T) {
	cfg := SelectConfig{Options: []string{"a", "b", "c"}, DefaultIndex: 1, Defaults: []int{0, 2, 9, -1}}

	def, ok := cfg.defaultOption()
	if !ok || def != "b" {
		t.Errorf("defaultOption = %q, %v", def, ok)
	}
	if diff := cmp.Diff([]string{"a", "c"}, cfg.defaultOptions()); diff != "" {
		t.Errorf("defaultOptions mismatch (-want +got):\n%s", diff)
	}

	cfg.DefaultIndex = 3
	if _, ok := cfg.defaultOption(); ok {
		t.Error("out-of-range default must not resolve")
	}
}

func TestSelectConfig_Indices(t *testing.T) {
	cfg := SelectConfig{Options: []string{"a", "b", "c"}}
	if diff := cmp.Diff([]int{2, 0}, cfg.indices([]string{"c", "a", "zz"})); diff != "" {
		t.Errorf("indices mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.indices(nil); len(got) != 0 {
		t.Errorf("empty choice must map to no indices, got %v", got)
	}
}
