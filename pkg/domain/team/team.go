package team

import (
	"fmt"
	"strings"
)

// Member represents a team member available for assignment.
// CurrentLoad is the sum of size estimates of open assigned stories.
// MaxCapacity is a target, not a hard limit: the assignment engine may
// exceed it when no alternative satisfies the skill requirement, and flags
// the overflow with a warning.
type Member struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Skills      []string `yaml:"skills" json:"skills"`
	CurrentLoad int      `yaml:"current_load" json:"current_load"`
	MaxCapacity int      `yaml:"max_capacity" json:"max_capacity"`
}

// HasSkill reports whether the member carries the given skill tag.
// Comparison is case-insensitive.
func (m *Member) HasSkill(skill string) bool {
	for _, s := range m.Skills {
		if strings.EqualFold(s, skill) {
			return true
		}
	}
	return false
}

// HasAnySkill reports whether the member carries at least one of the tags.
func (m *Member) HasAnySkill(skills []string) bool {
	for _, skill := range skills {
		if m.HasSkill(skill) {
			return true
		}
	}
	return false
}

// Roster holds the team configuration stored in .autoscrum/team.yaml.
type Roster struct {
	Members []Member `yaml:"members" json:"members"`

	// Version supports optimistic concurrency in the repository.
	Version int `yaml:"version" json:"-"`
}

// FindMember returns the member with the given ID, or nil if not found.
func (r *Roster) FindMember(id string) *Member {
	for i := range r.Members {
		if r.Members[i].ID == id {
			return &r.Members[i]
		}
	}
	return nil
}

// AddMember adds a member or updates their details if the ID already exists.
func (r *Roster) AddMember(m Member) error {
	if m.ID == "" {
		return fmt.Errorf("member ID cannot be empty")
	}
	if m.Name == "" {
		return fmt.Errorf("member name cannot be empty")
	}
	if m.MaxCapacity <= 0 {
		return fmt.Errorf("member max capacity must be positive")
	}
	for i := range r.Members {
		if r.Members[i].ID == m.ID {
			r.Members[i] = m
			return nil
		}
	}
	r.Members = append(r.Members, m)
	return nil
}

// RemoveMember removes a member by ID. Returns error if not found.
func (r *Roster) RemoveMember(id string) error {
	for i := range r.Members {
		if r.Members[i].ID == id {
			r.Members = append(r.Members[:i], r.Members[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("member not found: %s", id)
}
