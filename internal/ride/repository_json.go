package ride

import (
	"context"
	"errors"
	"sort"

	"clubsite-be/internal/jsonstore"
	"clubsite-be/internal/logger"
	"clubsite-be/internal/utils"

	"go.uber.org/zap"
)

const (
	ridesFile        = "rides.json"
	participantsFile = "participants.json"
)

type jsonRepository struct {
	rides        *jsonstore.Collection[Ride]
	participants *jsonstore.Collection[Participant]
}

func NewJSONRepository(dataDir string) Repository {
	return &jsonRepository{
		rides:        jsonstore.NewCollection[Ride](dataDir, ridesFile),
		participants: jsonstore.NewCollection[Participant](dataDir, participantsFile),
	}
}

func (r *jsonRepository) ListRides(ctx context.Context) ([]Ride, error) {
	rides, err := r.rides.Load(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rides, func(i, j int) bool { return rides[i].Date.Before(rides[j].Date) })
	return rides, nil
}

func (r *jsonRepository) GetRide(ctx context.Context, id string) (*Ride, error) {
	rides, err := r.rides.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, ride := range rides {
		if ride.ID == id {
			return &ride, nil
		}
	}
	return nil, ErrRideNotFound
}

func (r *jsonRepository) CreateRide(ctx context.Context, ride Ride) (*Ride, error) {
	if ride.ID == "" {
		ride.ID = utils.NewID()
	}
	err := r.rides.Modify(ctx, func(rides []Ride) ([]Ride, error) {
		return append(rides, ride), nil
	})
	if err != nil {
		return nil, err
	}
	return &ride, nil
}

func (r *jsonRepository) UpdateRide(ctx context.Context, ride Ride) error {
	return r.rides.Modify(ctx, func(rides []Ride) ([]Ride, error) {
		for i := range rides {
			if rides[i].ID == ride.ID {
				rides[i] = ride
				return rides, nil
			}
		}
		return nil, ErrRideNotFound
	})
}

func (r *jsonRepository) DeleteRide(ctx context.Context, id string) error {
	err := r.rides.Modify(ctx, func(rides []Ride) ([]Ride, error) {
		for i := range rides {
			if rides[i].ID == id {
				return append(rides[:i], rides[i+1:]...), nil
			}
		}
		return nil, ErrRideNotFound
	})
	if err != nil {
		return err
	}

	err = r.participants.Modify(ctx, func(ps []Participant) ([]Participant, error) {
		kept := ps[:0]
		for _, p := range ps {
			if p.RideID != id {
				kept = append(kept, p)
			}
		}
		return kept, nil
	})
	if err != nil {
		logger.FromCtx(ctx).Error("failed to remove participants of deleted ride",
			zap.String("ride_id", id),
			zap.Error(err),
		)
	}
	return err
}

func (r *jsonRepository) ToggleActive(ctx context.Context, id string) (*Ride, error) {
	var toggled Ride
	err := r.rides.Modify(ctx, func(rides []Ride) ([]Ride, error) {
		for i := range rides {
			if rides[i].ID == id {
				rides[i].Active = !rides[i].Active
				toggled = rides[i]
				return rides, nil
			}
		}
		return nil, ErrRideNotFound
	})
	if err != nil {
		return nil, err
	}
	return &toggled, nil
}

func (r *jsonRepository) ListParticipants(ctx context.Context, rideID string) ([]Participant, error) {
	all, err := r.participants.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := []Participant{}
	for _, p := range all {
		if p.RideID == rideID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *jsonRepository) CountParticipants(ctx context.Context) (map[string]int, error) {
	all, err := r.participants.Load(ctx)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, p := range all {
		counts[p.RideID]++
	}
	return counts, nil
}

// AddParticipant counts and appends under the participants lock, so two
// sign-ups for the last seat cannot both succeed.
func (r *jsonRepository) AddParticipant(ctx context.Context, p Participant) (*Participant, error) {
	ride, err := r.GetRide(ctx, p.RideID)
	if err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = utils.NewID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now().UTC()
	}

	err = r.participants.Modify(ctx, func(ps []Participant) ([]Participant, error) {
		count := 0
		for _, existing := range ps {
			if existing.RideID == p.RideID {
				count++
			}
		}
		if err := acceptsSignup(*ride, count); err != nil {
			return nil, err
		}
		return append(ps, p), nil
	})
	if err != nil {
		if !errors.Is(err, ErrRideFull) && !errors.Is(err, ErrRideClosed) {
			logger.FromCtx(ctx).Error("failed to add participant", zap.String("ride_id", p.RideID), zap.Error(err))
		}
		return nil, err
	}
	return &p, nil
}

func (r *jsonRepository) DeleteParticipant(ctx context.Context, id string) error {
	return r.participants.Modify(ctx, func(ps []Participant) ([]Participant, error) {
		for i := range ps {
			if ps[i].ID == id {
				return append(ps[:i], ps[i+1:]...), nil
			}
		}
		return nil, ErrParticipantNotFound
	})
}
