package planning

import (
	"fmt"
	"sort"

	"github.com/Anajrajeev/AutoScrum/pkg/domain/team"
)

// Assignment maps a story to a team member with the rationale for the pick.
type Assignment struct {
	StoryID       string `json:"story_id"`
	MemberID      string `json:"member_id"`
	MatchedSkill  string `json:"matched_skill,omitempty"`
	ResultingLoad int    `json:"resulting_load"`
}

// Warning flags a degraded assignment decision.
type Warning struct {
	StoryID        string `json:"story_id"`
	MemberID       string `json:"member_id,omitempty"`
	OvercapacityBy int    `json:"overcapacity_by,omitempty"`
	Message        string `json:"message"`
}

// AssignResult is the full outcome of one engine run. Every input story
// appears exactly once, either in Assignments or Unassigned.
type AssignResult struct {
	Assignments []Assignment `json:"assignments"`
	Unassigned  []Story      `json:"unassigned"`
	Warnings    []Warning    `json:"warnings"`
}

// Assign distributes stories over the roster. The algorithm is deterministic
// and pure: neither the stories nor the roster are modified, and no gateway
// call is involved.
//
// Ordering: descending size, then descending priority, then stories without
// dependencies, stable on input order. Each story goes to the candidate with
// the lowest projected load (current load plus points already assigned in
// this run); ties break on roster input order. Candidates are members whose
// skills overlap the story's inferred requirement; when nothing can be
// inferred the whole roster is eligible. Exceeding a member's max capacity
// still assigns but records a warning. A story whose requirement no member
// can meet lands in Unassigned, never silently dropped.
func Assign(stories []Story, roster []team.Member) AssignResult {
	result := AssignResult{
		Assignments: []Assignment{},
		Unassigned:  []Story{},
		Warnings:    []Warning{},
	}

	ordered := make([]Story, len(stories))
	copy(ordered, stories)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Points != ordered[j].Points {
			return ordered[i].Points > ordered[j].Points
		}
		if pi, pj := ordered[i].Priority.Weight(), ordered[j].Priority.Weight(); pi != pj {
			return pi > pj
		}
		return len(ordered[i].DependsOn) < len(ordered[j].DependsOn)
	})

	// Projected load per member for this run; the roster itself stays
	// untouched.
	projected := make(map[string]int, len(roster))
	for _, m := range roster {
		projected[m.ID] = m.CurrentLoad
	}

	for _, story := range ordered {
		required := InferSkills(&story)

		chosenIdx := -1
		matchedSkill := ""
		for i := range roster {
			skill := ""
			if len(required) > 0 {
				found := false
				for _, tag := range required {
					if roster[i].HasSkill(tag) {
						skill = tag
						found = true
						break
					}
				}
				if !found {
					continue
				}
			}
			if chosenIdx == -1 || projected[roster[i].ID] < projected[roster[chosenIdx].ID] {
				chosenIdx = i
				matchedSkill = skill
			}
		}

		if chosenIdx == -1 {
			result.Unassigned = append(result.Unassigned, story)
			result.Warnings = append(result.Warnings, Warning{
				StoryID: story.ID,
				Message: fmt.Sprintf("no roster member matches required skills %v", required),
			})
			continue
		}

		member := roster[chosenIdx]
		newLoad := projected[member.ID] + story.Points
		projected[member.ID] = newLoad

		if newLoad > member.MaxCapacity {
			result.Warnings = append(result.Warnings, Warning{
				StoryID:        story.ID,
				MemberID:       member.ID,
				OvercapacityBy: newLoad - member.MaxCapacity,
				Message:        fmt.Sprintf("assignment puts %s %d points over capacity", member.ID, newLoad-member.MaxCapacity),
			})
		}

		result.Assignments = append(result.Assignments, Assignment{
			StoryID:       story.ID,
			MemberID:      member.ID,
			MatchedSkill:  matchedSkill,
			ResultingLoad: newLoad,
		})
	}

	return result
}
