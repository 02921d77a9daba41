package planning

import "strings"

// skillKeywords maps coarse skill tags to the keywords that imply them in a
// story's title or description.
var skillKeywords = map[string][]string{
	"development": {"develop", "code", "implement", "backend", "frontend", "api", "database", "feature"},
	"testing":     {"test", "qa", "quality", "verify", "validation", "automat"},
	"devops":      {"deploy", "devops", "infrastructure", "ci/cd", "pipeline", "monitor", "alert"},
	"design":      {"ui", "ux", "design", "mockup", "wireframe", "layout"},
	"data":        {"analytics", "etl", "data model", "ml", "machine learning", "report"},
}

// InferSkills derives the skill requirement of a story from its title and
// description. The result holds both the coarse tags and the literal keywords
// that triggered them, so a roster tagged with either vocabulary (a broad
// "development" or a concrete "backend") satisfies the requirement. An empty
// result means no requirement could be derived and the full roster is a
// candidate.
func InferSkills(s *Story) []string {
	text := strings.ToLower(s.Title + " " + s.Description)

	var skills []string
	seen := make(map[string]bool)
	add := func(v string) {
		if !seen[v] {
			seen[v] = true
			skills = append(skills, v)
		}
	}

	for _, tag := range []string{"development", "testing", "devops", "design", "data"} {
		for _, keyword := range skillKeywords[tag] {
			if strings.Contains(text, keyword) {
				add(tag)
				add(keyword)
			}
		}
	}
	return skills
}
