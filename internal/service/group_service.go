package service

import (
	"log"
	"strconv"

	"github.com/trangpham2601/group-task-manager/internal/apperr"
	"github.com/trangpham2601/group-task-manager/internal/events"
	"github.com/trangpham2601/group-task-manager/internal/models"
	"github.com/trangpham2601/group-task-manager/internal/repository"
)

// GroupService manages group membership. Every membership mutation is a
// group document write, so each one publishes a change event that wakes
// unread watchers.
type GroupService struct {
	groupRepo repository.GroupRepositoryInterface
	readRepo  repository.ReadPositionRepositoryInterface
	bus       events.Bus
}

func NewGroupService(
	groupRepo repository.GroupRepositoryInterface,
	readRepo repository.ReadPositionRepositoryInterface,
	bus events.Bus,
) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		readRepo:  readRepo,
		bus:       bus,
	}
}

func (s *GroupService) CreateGroup(creatorID uint, name, description string) (*models.Group, error) {
	group := &models.Group{
		Name:        name,
		Description: description,
		CreatorID:   creatorID,
	}
	if err := s.groupRepo.Create(group); err != nil {
		return nil, err
	}
	if err := s.groupRepo.AddMember(group.ID, creatorID, models.RoleAdmin); err != nil {
		return nil, err
	}
	s.publishChanged(group.ID)
	return s.groupRepo.FindByID(group.ID)
}

func (s *GroupService) JoinGroup(groupID, userID uint) error {
	if _, err := s.groupRepo.FindByID(groupID); err != nil {
		return apperr.FromDB(err)
	}
	already, err := s.groupRepo.IsMember(groupID, userID)
	if err != nil {
		return apperr.Transient("membership check", err)
	}
	if already {
		return nil
	}
	if err := s.groupRepo.AddMember(groupID, userID, models.RoleMember); err != nil {
		return err
	}
	s.publishChanged(groupID)
	return nil
}

// LeaveGroup removes the member and their read marker. The read marker
// cleanup means a rejoin starts from "never read", counting the whole
// backlog again.
func (s *GroupService) LeaveGroup(groupID, userID uint) error {
	isMember, err := s.groupRepo.IsMember(groupID, userID)
	if err != nil {
		return apperr.Transient("membership check", err)
	}
	if !isMember {
		return apperr.ErrNotFound
	}
	if err := s.groupRepo.RemoveMember(groupID, userID); err != nil {
		return err
	}
	if err := s.readRepo.DeleteForMember(groupID, userID); err != nil {
		log.Printf("group: removing read position for user %d group %d: %v", userID, groupID, err)
	}
	s.publishChanged(groupID)
	return nil
}

func (s *GroupService) GetGroup(groupID, userID uint) (*models.Group, error) {
	isMember, err := s.groupRepo.IsMember(groupID, userID)
	if err != nil {
		return nil, apperr.Transient("membership check", err)
	}
	if !isMember {
		return nil, apperr.ErrPermissionDenied
	}
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	return group, nil
}

func (s *GroupService) GetMembers(groupID, userID uint) ([]models.User, error) {
	isMember, err := s.groupRepo.IsMember(groupID, userID)
	if err != nil {
		return nil, apperr.Transient("membership check", err)
	}
	if !isMember {
		return nil, apperr.ErrPermissionDenied
	}
	return s.groupRepo.GetMembers(groupID)
}

func (s *GroupService) GetUserGroups(userID uint) ([]models.Group, error) {
	return s.groupRepo.GetUserGroups(userID)
}

func (s *GroupService) publishChanged(groupID uint) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(events.GroupsChanged, []byte(strconv.FormatUint(uint64(groupID), 10))); err != nil {
		log.Printf("group: publishing change for group %d: %v", groupID, err)
	}
}
