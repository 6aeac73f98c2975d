package session

import "testing"

func TestStageNextStopsAtAudited(t *testing.T) {
	order := []Stage{StageUpload, StageProcess, StageProcessed, StageSimulated, StageAudited}
	for i := 0; i < len(order)-1; i++ {
		if got := order[i].Next(); got != order[i+1] {
			t.Fatalf("%s.Next() = %s, want %s", order[i], got, order[i+1])
		}
	}
	if got := StageAudited.Next(); got != StageAudited {
		t.Fatalf("audited.Next() = %s, want audited", got)
	}
}

func TestStageNames(t *testing.T) {
	for _, stage := range []Stage{StageUpload, StageProcess, StageProcessed, StageSimulated, StageAudited} {
		if stage.String() == "Unknown" {
			t.Fatalf("stage %d has no name", stage)
		}
		if stage.FriendlyName() == "" {
			t.Fatalf("stage %d has no friendly name", stage)
		}
	}
	if got := Stage(99).String(); got != "Unknown" {
		t.Fatalf("out-of-range stage String() = %q", got)
	}
}

func TestOnlyAuditedIsTerminal(t *testing.T) {
	for _, stage := range []Stage{StageUpload, StageProcess, StageProcessed, StageSimulated} {
		if stage.IsTerminal() {
			t.Fatalf("%s must not be terminal", stage)
		}
	}
	if !StageAudited.IsTerminal() {
		t.Fatalf("audited must be terminal")
	}
}
