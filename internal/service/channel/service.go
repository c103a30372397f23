package channel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/workstream/comms-api/internal/model"
	"github.com/workstream/comms-api/internal/repository"
	apperrors "github.com/workstream/comms-api/pkg/errors"
)

type Service struct {
	repo repository.ChannelRepository
}

func NewService(repo repository.ChannelRepository) *Service {
	return &Service{repo: repo}
}

// Create makes the owner a moderator and seeds the initial member set.
// Names collide case-insensitively within a company.
func (s *Service) Create(ctx context.Context, companyID, ownerID uuid.UUID, req *model.CreateChannelRequest) (*model.Channel, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("channel name is required", nil)
	}

	exists, err := s.repo.NameExists(ctx, companyID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.DuplicateName(name)
	}

	chType := req.Type
	if chType == "" {
		chType = model.ChannelTypeTopic
	}

	channel := &model.Channel{
		CompanyID:   companyID,
		Name:        name,
		Type:        chType,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
		CreatedBy:   ownerID,
	}

	members := []*model.ChannelMember{
		{UserID: ownerID, Role: model.ChannelRoleModerator},
	}
	for _, id := range req.Members {
		if id == ownerID {
			continue
		}
		members = append(members, &model.ChannelMember{UserID: id, Role: model.ChannelRoleMember})
	}

	if err := s.repo.Create(ctx, channel, members); err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}
	return channel, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Channel, error) {
	channel, err := s.repo.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("channel", err)
	}
	return channel, err
}

// List returns public channels plus private ones the user belongs to.
func (s *Service) List(ctx context.Context, companyID, userID uuid.UUID) ([]*model.Channel, error) {
	channels, err := s.repo.List(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	if channels == nil {
		channels = []*model.Channel{}
	}
	return channels, nil
}

// Join adds the user as a regular member. Private channels cannot be
// self-joined; membership there is granted at creation time or by a
// moderator.
func (s *Service) Join(ctx context.Context, channelID, userID uuid.UUID) error {
	channel, err := s.repo.Get(ctx, channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("channel", err)
	}
	if err != nil {
		return err
	}
	if channel.IsPrivate {
		isMember, err := s.repo.IsMember(ctx, channelID, userID)
		if err != nil {
			return err
		}
		if !isMember {
			return apperrors.Forbidden("cannot join a private channel", nil)
		}
		return nil
	}
	return s.repo.AddMember(ctx, &model.ChannelMember{
		ChannelID: channelID,
		UserID:    userID,
		Role:      model.ChannelRoleMember,
	})
}

// Leave is idempotent; leaving a channel you are not in is a no-op.
// The last member leaving does not delete the channel.
func (s *Service) Leave(ctx context.Context, channelID, userID uuid.UUID) error {
	_, err := s.repo.Get(ctx, channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("channel", err)
	}
	if err != nil {
		return err
	}
	return s.repo.RemoveMember(ctx, channelID, userID)
}

// Invite lets a moderator add someone to a channel, which is the only
// way into a private one.
func (s *Service) Invite(ctx context.Context, channelID, actorID, userID uuid.UUID) error {
	role, err := s.repo.GetMemberRole(ctx, channelID, actorID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.Forbidden("only channel moderators can invite", nil)
	}
	if err != nil {
		return err
	}
	if role != model.ChannelRoleModerator {
		return apperrors.Forbidden("only channel moderators can invite", nil)
	}
	return s.repo.AddMember(ctx, &model.ChannelMember{
		ChannelID: channelID,
		UserID:    userID,
		Role:      model.ChannelRoleMember,
	})
}
