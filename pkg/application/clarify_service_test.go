package application

import (
	"context"
	"testing"

	"github.com/Anajrajeev/AutoScrum/pkg/domain"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/feature"
)

func TestClarify_EmptyText(t *testing.T) {
	env := newTestEnv(t)

	run, _ := env.workflow.StartFeature(context.Background(), "Login", "Users can sign in")
	if _, err := env.workflow.SubmitClarification(context.Background(), run.FeatureID, "   "); err == nil {
		t.Fatal("expected error for blank submission")
	}
}

func TestClarify_MergesSummaryIntoContext(t *testing.T) {
	env := newTestEnv(t, clarifyQuestionResponse)

	run, _ := env.workflow.StartFeature(context.Background(), "Login", "Users can sign in")
	res, err := env.workflow.SubmitClarification(context.Background(), run.FeatureID, "We need email login")
	if err != nil {
		t.Fatalf("submission failed: %v", err)
	}

	if len(res.Context.Goals) != 1 || res.Context.Goals[0] != "allow users to sign in" {
		t.Fatalf("summary was not merged: %+v", res.Context.Goals)
	}
	if res.Context.QuestionsAsked != 1 {
		t.Fatalf("expected 1 question asked, got %d", res.Context.QuestionsAsked)
	}

	f, _ := env.repo.LoadFeature(run.FeatureID)
	if got := f.Context.LastAssistantPrompt(); got != "Which identity providers must be supported?" {
		t.Fatalf("question not recorded in transcript: %q", got)
	}
}

func TestClarify_IncompleteWithoutQuestion(t *testing.T) {
	env := newTestEnv(t, `{"summary": {}, "is_complete": false, "next_question": ""}`)

	run, _ := env.workflow.StartFeature(context.Background(), "Login", "Users can sign in")
	_, err := env.workflow.SubmitClarification(context.Background(), run.FeatureID, "We need email login")
	if !domain.IsMalformedOutput(err) {
		t.Fatalf("expected MalformedOutputError, got %v", err)
	}
}

func TestClarify_RejectsCompletedContext(t *testing.T) {
	env := newTestEnv(t)
	svc := NewClarifyService(env.repo, nil, nil)

	f, _ := feature.New("Login", "Users can sign in")
	f.Context.Complete = true

	_, err := svc.Submit(context.Background(), f, "more input")
	if !domain.IsPrecondition(err) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
}
