package assessment

import "strings"

// JobDescription is the job record the candidate is screened against.
type JobDescription struct {
	Title       string   `json:"title"`
	Skills      []string `json:"skills"`
	Experience  string   `json:"experience,omitempty"`
	Description string   `json:"description,omitempty"`
}

// ParseSkills splits a comma-separated skills string. Entries are trimmed and
// empty ones dropped. Case is preserved for display.
func ParseSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		skills = append(skills, part)
	}
	return skills
}

// SkillsString joins the skills back into the catalog representation.
func (j JobDescription) SkillsString() string {
	return strings.Join(j.Skills, ", ")
}

func (j JobDescription) normalizedSkills() []string {
	skills := make([]string, 0, len(j.Skills))
	for _, skill := range j.Skills {
		skill = strings.ToLower(strings.TrimSpace(skill))
		if skill == "" {
			continue
		}
		skills = append(skills, skill)
	}
	return skills
}
