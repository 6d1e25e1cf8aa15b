package group

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/yzeid/tally/internal/activity"
)

// Common errors
var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberAlreadyExists = errors.New("user is already a member of this group")
)

// ProfileSource resolves display names for activity events.
type ProfileSource interface {
	DisplayName(ctx context.Context, userID int64) (string, error)
}

// Service handles group business logic. Membership changes affect balance
// attribution, so adds and removals go through the activity recorder.
type Service struct {
	repo     *Repository
	recorder activity.Recorder
	profiles ProfileSource
}

// NewService creates a new group service.
func NewService(repo *Repository, recorder activity.Recorder, profiles ProfileSource) *Service {
	return &Service{repo: repo, recorder: recorder, profiles: profiles}
}

// Create creates a new group and adds the creator as a joined admin.
func (s *Service) Create(ctx context.Context, creatorID int64, req *CreateGroupRequest) (*Group, error) {
	group, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.AddMember(ctx, group.ID, creatorID, MemberRoleAdmin, MemberStatusJoined); err != nil {
		return nil, err
	}

	return group, nil
}

// GetByID retrieves a group by its ID.
func (s *Service) GetByID(ctx context.Context, id int64) (*Group, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// GetByIDWithMembers retrieves a group with all its members.
func (s *Service) GetByIDWithMembers(ctx context.Context, id int64) (*Group, []*GroupMember, error) {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.repo.GetMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return group, members, nil
}

// ListByUserID retrieves all groups for a user.
func (s *Service) ListByUserID(ctx context.Context, userID int64, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByUserID(ctx, userID, perPage, offset)
}

// Update modifies an existing group.
func (s *Service) Update(ctx context.Context, id int64, req *UpdateGroupRequest) (*Group, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrGroupNotFound
	}

	return s.repo.Update(ctx, id, req)
}

// Delete removes a group and its memberships.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// AddMember invites a user to a group and records the membership change.
func (s *Service) AddMember(ctx context.Context, actorID, groupID int64, req *AddMemberRequest) (*GroupMember, error) {
	group, err := s.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetMember(ctx, groupID, req.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrMemberAlreadyExists
	}

	role := req.Role
	if role == "" {
		role = MemberRoleMember
	}

	member, err := s.repo.AddMember(ctx, groupID, req.UserID, role, MemberStatusInvited)
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("%s added %s to %s",
		s.displayName(ctx, actorID), s.displayName(ctx, req.UserID), group.Name)
	s.record(ctx, activity.NewEvent(actorID, s.displayName(ctx, actorID),
		activity.ActionMemberAdded, details,
		activity.WithMember(req.UserID)))

	return member, nil
}

// GetMembers retrieves all members of a group.
func (s *Service) GetMembers(ctx context.Context, groupID int64) ([]*GroupMember, error) {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	return s.repo.GetMembers(ctx, groupID)
}

// RemoveMember removes a user from a group and records the change.
// Removal does not touch existing ledgers; the departed member's
// unsettled shares continue to count against them.
func (s *Service) RemoveMember(ctx context.Context, actorID, groupID, userID int64) error {
	group, err := s.GetByID(ctx, groupID)
	if err != nil {
		return err
	}

	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrMemberNotFound
	}

	if err := s.repo.RemoveMember(ctx, groupID, userID); err != nil {
		return err
	}

	details := fmt.Sprintf("%s removed %s from %s",
		s.displayName(ctx, actorID), s.displayName(ctx, userID), group.Name)
	s.record(ctx, activity.NewEvent(actorID, s.displayName(ctx, actorID),
		activity.ActionMemberRemoved, details,
		activity.WithMember(userID)))

	return nil
}

// AcceptInvitation allows a user to accept their group invitation.
func (s *Service) AcceptInvitation(ctx context.Context, groupID, userID int64) (*GroupMember, error) {
	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	if member.Status != MemberStatusInvited {
		return member, nil // Already joined
	}

	return s.repo.UpdateMemberStatus(ctx, groupID, userID, MemberStatusJoined)
}

func (s *Service) record(ctx context.Context, e activity.Event) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, e); err != nil {
		log.Printf("warning: failed to record %s activity event: %v", e.Action, err)
	}
}

func (s *Service) displayName(ctx context.Context, userID int64) string {
	if s.profiles != nil {
		if name, err := s.profiles.DisplayName(ctx, userID); err == nil && name != "" {
			return name
		}
	}
	return fmt.Sprintf("user %d", userID)
}
