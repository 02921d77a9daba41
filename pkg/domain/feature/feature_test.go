package feature

import (
	"testing"
)

func TestContext_Merge(t *testing.T) {
	t.Run("merges new entries", func(t *testing.T) {
		ctx := Context{Goals: []string{"Fast login"}}
		ctx.Merge(Summary{
			Goals:        []string{"Secure sessions"},
			UserPersonas: []string{"Admin"},
		})

		if len(ctx.Goals) != 2 {
			t.Fatalf("expected 2 goals, got %d", len(ctx.Goals))
		}
		if len(ctx.UserPersonas) != 1 {
			t.Fatalf("expected 1 persona, got %d", len(ctx.UserPersonas))
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		ctx := Context{}
		summary := Summary{
			Goals:              []string{"Fast login", "Secure sessions"},
			AcceptanceCriteria: []string{"User can log in"},
		}
		ctx.Merge(summary)
		ctx.Merge(summary)

		if len(ctx.Goals) != 2 {
			t.Fatalf("expected 2 goals after double merge, got %d", len(ctx.Goals))
		}
		if len(ctx.AcceptanceCriteria) != 1 {
			t.Fatalf("expected 1 criterion after double merge, got %d", len(ctx.AcceptanceCriteria))
		}
	})

	t.Run("dedupes by normalized equivalence", func(t *testing.T) {
		ctx := Context{Goals: []string{"Fast Login"}}
		ctx.Merge(Summary{Goals: []string{"  fast   login "}})

		if len(ctx.Goals) != 1 {
			t.Fatalf("expected restated goal to be dropped, got %v", ctx.Goals)
		}
	})

	t.Run("skips empty entries", func(t *testing.T) {
		ctx := Context{}
		ctx.Merge(Summary{Goals: []string{"", "   "}})

		if len(ctx.Goals) != 0 {
			t.Fatalf("expected blank goals to be dropped, got %v", ctx.Goals)
		}
	})
}

func TestContext_AppendTurn(t *testing.T) {
	ctx := Context{}

	if !ctx.AppendTurn(RoleUser, "add SSO") {
		t.Fatal("first turn should be accepted")
	}
	if ctx.AppendTurn(RoleUser, "add SSO") {
		t.Fatal("identical consecutive turn should be rejected")
	}
	if len(ctx.Transcript) != 1 {
		t.Fatalf("expected transcript length 1, got %d", len(ctx.Transcript))
	}

	if !ctx.AppendTurn(RoleAssistant, "Who are the users?") {
		t.Fatal("assistant turn should be accepted")
	}
	// A retry of the same user text after the question is still a duplicate.
	if ctx.AppendTurn(RoleUser, "add SSO") {
		t.Fatal("retried user turn should be rejected")
	}
	if !ctx.AppendTurn(RoleUser, "admins and developers") {
		t.Fatal("fresh answer should be accepted")
	}
	if len(ctx.Transcript) != 3 {
		t.Fatalf("expected transcript length 3, got %d", len(ctx.Transcript))
	}
}

func TestContext_LastAssistantPrompt(t *testing.T) {
	ctx := Context{}
	if got := ctx.LastAssistantPrompt(); got != "" {
		t.Fatalf("expected empty prompt on fresh context, got %q", got)
	}

	ctx.AppendTurn(RoleUser, "hello")
	ctx.AppendTurn(RoleAssistant, "first question")
	ctx.AppendTurn(RoleUser, "answer")
	ctx.AppendTurn(RoleAssistant, "second question")

	if got := ctx.LastAssistantPrompt(); got != "second question" {
		t.Fatalf("expected latest assistant turn, got %q", got)
	}
}

func TestNew(t *testing.T) {
	f, err := New("Login", "Allow users to authenticate")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if f.ID == "" {
		t.Fatal("expected a generated feature ID")
	}
	if f.Context.Complete {
		t.Fatal("fresh feature context should not be complete")
	}

	if _, err := New("   ", "desc"); err == nil {
		t.Fatal("expected error for blank name")
	}
}
