package application

import (
	"fmt"
	"sync"

	"github.com/Anajrajeev/AutoScrum/pkg/domain"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/team"
)

// TeamService manages the roster. All writes go through a single mutex so
// concurrent features committing assignments to the same member never race
// on the load counter.
type TeamService struct {
	repo  WorkspaceRepository
	audit domain.AuditLogger

	mu sync.Mutex
}

func NewTeamService(repo WorkspaceRepository, audit domain.AuditLogger) *TeamService {
	return &TeamService{repo: repo, audit: audit}
}

func (s *TeamService) Roster() (*team.Roster, error) {
	return s.repo.LoadRoster()
}

func (s *TeamService) AddMember(m team.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	roster, err := s.repo.LoadRoster()
	if err != nil {
		return err
	}
	if err := roster.AddMember(m); err != nil {
		return err
	}
	if err := s.repo.SaveRoster(roster); err != nil {
		return err
	}

	if s.audit != nil {
		_ = s.audit.Log("team.member_added", "human", map[string]interface{}{
			"member_id": m.ID,
			"skills":    m.Skills,
		})
	}
	return nil
}

func (s *TeamService) RemoveMember(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	roster, err := s.repo.LoadRoster()
	if err != nil {
		return err
	}
	if err := roster.RemoveMember(id); err != nil {
		return err
	}
	if err := s.repo.SaveRoster(roster); err != nil {
		return err
	}

	if s.audit != nil {
		_ = s.audit.Log("team.member_removed", "human", map[string]interface{}{
			"member_id": id,
		})
	}
	return nil
}

// ApplyLoad adjusts a member's current load by delta. Called once per story
// when a commit succeeds, under the roster write lock.
func (s *TeamService) ApplyLoad(memberID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	roster, err := s.repo.LoadRoster()
	if err != nil {
		return err
	}
	member := roster.FindMember(memberID)
	if member == nil {
		return fmt.Errorf("member %s not in roster", memberID)
	}
	member.CurrentLoad += delta
	if member.CurrentLoad < 0 {
		member.CurrentLoad = 0
	}
	return s.repo.SaveRoster(roster)
}
