package team

import "testing"

func TestMember_HasSkill(t *testing.T) {
	m := Member{ID: "alice", Name: "Alice", Skills: []string{"backend", "DevOps"}, MaxCapacity: 10}

	if !m.HasSkill("backend") {
		t.Error("expected backend skill")
	}
	if !m.HasSkill("devops") {
		t.Error("skill match should be case-insensitive")
	}
	if m.HasSkill("frontend") {
		t.Error("did not expect frontend skill")
	}
	if !m.HasAnySkill([]string{"frontend", "backend"}) {
		t.Error("expected at least one matching skill")
	}
	if m.HasAnySkill([]string{"ml"}) {
		t.Error("did not expect a match for ml")
	}
}

func TestRoster_AddMember(t *testing.T) {
	tests := []struct {
		name    string
		member  Member
		wantErr bool
	}{
		{"valid", Member{ID: "alice", Name: "Alice", MaxCapacity: 10}, false},
		{"missing id", Member{Name: "Bob", MaxCapacity: 10}, true},
		{"missing name", Member{ID: "bob", MaxCapacity: 10}, true},
		{"zero capacity", Member{ID: "bob", Name: "Bob"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Roster
			err := r.AddMember(tt.member)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AddMember() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	t.Run("updates existing member in place", func(t *testing.T) {
		var r Roster
		if err := r.AddMember(Member{ID: "alice", Name: "Alice", MaxCapacity: 10}); err != nil {
			t.Fatal(err)
		}
		if err := r.AddMember(Member{ID: "alice", Name: "Alice", Skills: []string{"qa"}, MaxCapacity: 8}); err != nil {
			t.Fatal(err)
		}
		if len(r.Members) != 1 {
			t.Fatalf("expected 1 member, got %d", len(r.Members))
		}
		if r.Members[0].MaxCapacity != 8 {
			t.Fatalf("expected updated capacity 8, got %d", r.Members[0].MaxCapacity)
		}
	})
}

func TestRoster_RemoveMember(t *testing.T) {
	var r Roster
	_ = r.AddMember(Member{ID: "alice", Name: "Alice", MaxCapacity: 10})

	if err := r.RemoveMember("alice"); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	if err := r.RemoveMember("alice"); err == nil {
		t.Fatal("expected error removing missing member")
	}
	if r.FindMember("alice") != nil {
		t.Fatal("expected member to be gone")
	}
}
