package match

import "testing"

func TestAdd_DropsEmptyLineLists(t *testing.T) {
	r := Result{}
	r.Add("syslog", nil)
	r.Add("crash", []string{})
	if !r.IsEmpty() {
		t.Errorf("Result = %v, want empty", r)
	}

	r.Add("syslog", []string{"ERROR disk full"})
	if r.IsEmpty() {
		t.Error("IsEmpty() = true after adding a match")
	}
	if got := r.Lines("syslog"); len(got) != 1 || got[0] != "ERROR disk full" {
		t.Errorf("Lines(syslog) = %q", got)
	}
	if r.Lines("crash") != nil {
		t.Error("Lines(crash) should be nil")
	}
}

func TestNames_Sorted(t *testing.T) {
	r := Result{}
	r.Add("zeta", []string{"z"})
	r.Add("alpha", []string{"a"})
	names := r.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("Names() = %q", names)
	}
}

func TestTotalLines(t *testing.T) {
	r := Result{}
	r.Add("a", []string{"1", "2"})
	r.Add("b", []string{"3"})
	if got := r.TotalLines(); got != 3 {
		t.Errorf("TotalLines() = %d", got)
	}
}
