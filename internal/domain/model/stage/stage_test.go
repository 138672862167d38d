package stage

import "testing"

func TestPipelineOrder(t *testing.T) {
	want := []string{
		Requirements,
		UserStories,
		Design,
		Code,
		SecurityReview,
		TestCases,
		Deployment,
	}

	p := Pipeline()
	if len(p) != len(want) {
		t.Fatalf("Pipeline() returned %d stages, want %d", len(p), len(want))
	}
	for i, s := range p {
		if s.Name() != want[i] {
			t.Errorf("stage %d = %s, want %s", i, s.Name(), want[i])
		}
		if s.Position() != i {
			t.Errorf("stage %s position = %d, want %d", s.Name(), s.Position(), i)
		}
	}
	if First().Name() != Requirements {
		t.Errorf("First() = %s, want %s", First().Name(), Requirements)
	}
	if !p[len(p)-1].IsLast() {
		t.Error("final stage must report IsLast")
	}
	if p[0].IsLast() {
		t.Error("first stage must not report IsLast")
	}
}

func TestByPosition(t *testing.T) {
	tests := []struct {
		name    string
		pos     int
		want    string
		wantErr bool
	}{
		{"first", 0, Requirements, false},
		{"middle", 3, Code, false},
		{"last", 6, Deployment, false},
		{"negative", -1, "", true},
		{"past end", Count(), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ByPosition(tt.pos)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ByPosition(%d) error = %v, wantErr %v", tt.pos, err, tt.wantErr)
			}
			if err == nil && s.Name() != tt.want {
				t.Errorf("ByPosition(%d) = %s, want %s", tt.pos, s.Name(), tt.want)
			}
		})
	}
}

func TestByName(t *testing.T) {
	s, err := ByName(SecurityReview)
	if err != nil {
		t.Fatalf("ByName() error = %v", err)
	}
	if s.Position() != 4 {
		t.Errorf("security_review position = %d, want 4", s.Position())
	}
	if _, err := ByName("shipping"); err == nil {
		t.Error("unknown stage name must be rejected")
	}
}
