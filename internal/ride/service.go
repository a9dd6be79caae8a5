package ride

import (
	"context"
	"fmt"

	"clubsite-be/internal/logger"
	"clubsite-be/internal/utils"

	"go.uber.org/zap"
)

type SignupInput struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"max=50"`
}

type Service interface {
	List(ctx context.Context, onlyActive bool) ([]RideWithCount, error)
	Create(ctx context.Context, r Ride) (*Ride, error)
	Toggle(ctx context.Context, id string) (*Ride, error)
	Delete(ctx context.Context, id string) error
	Participants(ctx context.Context, rideID string) ([]Participant, error)
	SignUp(ctx context.Context, rideID string, in SignupInput) (*Participant, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, onlyActive bool) ([]RideWithCount, error) {
	rides, err := s.repo.ListRides(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountParticipants(ctx)
	if err != nil {
		return nil, err
	}

	out := []RideWithCount{}
	for _, r := range rides {
		if onlyActive && !r.Active {
			continue
		}
		out = append(out, RideWithCount{Ride: r, ParticipantCount: counts[r.ID]})
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, r Ride) (*Ride, error) {
	if err := utils.Validate(r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	created, err := s.repo.CreateRide(ctx, r)
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("ride created", zap.String("ride_id", created.ID))
	return created, nil
}

func (s *service) Toggle(ctx context.Context, id string) (*Ride, error) {
	return s.repo.ToggleActive(ctx, id)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteRide(ctx, id); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("ride deleted", zap.String("ride_id", id))
	return nil
}

func (s *service) Participants(ctx context.Context, rideID string) ([]Participant, error) {
	if _, err := s.repo.GetRide(ctx, rideID); err != nil {
		return nil, err
	}
	return s.repo.ListParticipants(ctx, rideID)
}

func (s *service) SignUp(ctx context.Context, rideID string, in SignupInput) (*Participant, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "SignUp"),
		zap.String("ride_id", rideID),
	)

	if err := utils.Validate(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	p, err := s.repo.AddParticipant(ctx, Participant{
		RideID: rideID,
		Name:   in.Name,
		Email:  in.Email,
		Phone:  in.Phone,
	})
	if err != nil {
		log.Warn("sign-up rejected", zap.Error(err))
		return nil, err
	}

	log.Info("participant added", zap.String("participant_id", p.ID))
	return p, nil
}
