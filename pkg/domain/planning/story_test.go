package planning

import "testing"

func TestStory_Validate(t *testing.T) {
	valid := Story{
		ID:                 "s1",
		Title:              "Login form",
		AcceptanceCriteria: []string{"user can submit credentials"},
		Points:             3,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid story, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Story)
	}{
		{"empty title", func(s *Story) { s.Title = "" }},
		{"no criteria", func(s *Story) { s.AcceptanceCriteria = nil }},
		{"zero points", func(s *Story) { s.Points = 0 }},
		{"negative points", func(s *Story) { s.Points = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestNormalizePoints(t *testing.T) {
	tests := []struct {
		raw  int
		want int
	}{
		{-3, 1}, {0, 1}, {1, 1}, {2, 2}, {3, 3}, {4, 3}, {5, 5},
		{6, 5}, {7, 8}, {8, 8}, {10, 8}, {11, 13}, {13, 13}, {40, 13},
	}
	for _, tt := range tests {
		if got := NormalizePoints(tt.raw); got != tt.want {
			t.Errorf("NormalizePoints(%d) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestStoryStatus_Transitions(t *testing.T) {
	if !StatusTodo.CanTransitionWith("start") {
		t.Error("todo should allow start")
	}
	if StatusTodo.CanTransitionWith("approve") {
		t.Error("todo should not allow approve")
	}

	status, err := StatusInProgress.TransitionWith("review")
	if err != nil {
		t.Fatalf("review from in_progress failed: %v", err)
	}
	if status != StatusInReview {
		t.Fatalf("expected in_review, got %s", status)
	}

	if _, err := StatusDone.TransitionWith("block"); err == nil {
		t.Error("done should not allow block")
	}
}

func TestParseStoryStatus(t *testing.T) {
	if _, err := ParseStoryStatus("in_review"); err != nil {
		t.Fatalf("in_review should parse: %v", err)
	}
	if _, err := ParseStoryStatus("bogus"); err == nil {
		t.Fatal("bogus should not parse")
	}
}

func TestInferSkills(t *testing.T) {
	tests := []struct {
		name  string
		story Story
		want  []string
	}{
		{
			"backend story",
			Story{Title: "Implement API endpoint", Description: "backend handler"},
			[]string{"development"},
		},
		{
			"qa story",
			Story{Title: "Add regression test suite", Description: "automate validation"},
			[]string{"testing"},
		},
		{
			"infra story",
			Story{Title: "Set up deploy pipeline", Description: "ci/cd for the service"},
			[]string{"devops"},
		},
		{
			"nothing inferable",
			Story{Title: "Sort out the thing", Description: "general cleanup"},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferSkills(&tt.story)
			if len(got) < len(tt.want) {
				t.Fatalf("InferSkills() = %v, want at least %v", got, tt.want)
			}
			for i, w := range tt.want {
				if got[i] != w {
					t.Fatalf("InferSkills() = %v, want prefix %v", got, tt.want)
				}
			}
		})
	}
}

func TestInferSkills_IncludesLiteralKeywords(t *testing.T) {
	story := Story{Title: "Implement backend endpoint", Description: "rest api handler"}
	got := InferSkills(&story)

	want := map[string]bool{"development": false, "backend": false, "api": false}
	for _, s := range got {
		if _, ok := want[s]; ok {
			want[s] = true
		}
	}
	for s, found := range want {
		if !found {
			t.Fatalf("InferSkills() = %v, missing %q", got, s)
		}
	}
}
