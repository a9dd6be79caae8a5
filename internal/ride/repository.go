package ride

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"clubsite-be/internal/db"
	"clubsite-be/internal/logger"
	"clubsite-be/internal/utils"

	"go.uber.org/zap"
)

type Repository interface {
	ListRides(ctx context.Context) ([]Ride, error)
	GetRide(ctx context.Context, id string) (*Ride, error)
	CreateRide(ctx context.Context, r Ride) (*Ride, error)
	UpdateRide(ctx context.Context, r Ride) error
	DeleteRide(ctx context.Context, id string) error
	ToggleActive(ctx context.Context, id string) (*Ride, error)

	ListParticipants(ctx context.Context, rideID string) ([]Participant, error)
	CountParticipants(ctx context.Context) (map[string]int, error)
	AddParticipant(ctx context.Context, p Participant) (*Participant, error)
	DeleteParticipant(ctx context.Context, id string) error
}

func NewRepository(useMySQL bool, q db.Querier, dataDir string) Repository {
	if useMySQL {
		return NewMySQLRepository(q)
	}
	return NewJSONRepository(dataDir)
}

var now = time.Now

type mysqlRepository struct {
	db db.Querier
}

func NewMySQLRepository(q db.Querier) Repository {
	return &mysqlRepository{db: q}
}

const (
	rideColumns        = `id, title, date, startLocation, distance, description, active, maxParticipants`
	participantColumns = `id, rideId, name, email, phone, createdAt`
)

type scanner interface {
	Scan(dest ...any) error
}

func scanRide(s scanner) (Ride, error) {
	var r Ride
	err := s.Scan(&r.ID, &r.Title, &r.Date, &r.StartLocation, &r.Distance, &r.Description, &r.Active, &r.MaxParticipants)
	return r, err
}

func scanParticipant(s scanner) (Participant, error) {
	var p Participant
	err := s.Scan(&p.ID, &p.RideID, &p.Name, &p.Email, &p.Phone, &p.CreatedAt)
	return p, err
}

func InsertRide(ctx context.Context, q db.Querier, r Ride) error {
	_, err := db.Exec(ctx, q,
		`INSERT INTO rides (`+rideColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Title, r.Date, r.StartLocation, r.Distance, r.Description, r.Active, r.MaxParticipants,
	)
	return err
}

func InsertParticipant(ctx context.Context, q db.Querier, p Participant) error {
	_, err := db.Exec(ctx, q,
		`INSERT INTO participants (`+participantColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.RideID, p.Name, p.Email, p.Phone, p.CreatedAt,
	)
	return err
}

func (r *mysqlRepository) ListRides(ctx context.Context) ([]Ride, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "ride.ListRides"))

	rows, err := db.Query(ctx, r.db, `SELECT `+rideColumns+` FROM rides ORDER BY date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rides := []Ride{}
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

func (r *mysqlRepository) GetRide(ctx context.Context, id string) (*Ride, error) {
	ride, err := scanRide(r.db.QueryRowContext(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRideNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ride, nil
}

func (r *mysqlRepository) CreateRide(ctx context.Context, ride Ride) (*Ride, error) {
	if ride.ID == "" {
		ride.ID = utils.NewID()
	}
	if err := InsertRide(ctx, r.db, ride); err != nil {
		return nil, err
	}
	return &ride, nil
}

func (r *mysqlRepository) UpdateRide(ctx context.Context, ride Ride) error {
	res, err := db.Exec(ctx, r.db, `
		UPDATE rides
		SET title = ?, date = ?, startLocation = ?, distance = ?, description = ?, active = ?, maxParticipants = ?
		WHERE id = ?
	`, ride.Title, ride.Date, ride.StartLocation, ride.Distance, ride.Description, ride.Active, ride.MaxParticipants, ride.ID)
	if err != nil {
		return err
	}
	return db.Affected(res, ErrRideNotFound)
}

// DeleteRide relies on the participants foreign key to cascade.
func (r *mysqlRepository) DeleteRide(ctx context.Context, id string) error {
	res, err := db.Exec(ctx, r.db, `DELETE FROM rides WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return db.Affected(res, ErrRideNotFound)
}

func (r *mysqlRepository) ToggleActive(ctx context.Context, id string) (*Ride, error) {
	res, err := db.Exec(ctx, r.db, `UPDATE rides SET active = NOT active WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if err := db.Affected(res, ErrRideNotFound); err != nil {
		return nil, err
	}
	return r.GetRide(ctx, id)
}

func (r *mysqlRepository) ListParticipants(ctx context.Context, rideID string) ([]Participant, error) {
	rows, err := db.Query(ctx, r.db,
		`SELECT `+participantColumns+` FROM participants WHERE rideId = ? ORDER BY createdAt ASC`, rideID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := []Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *mysqlRepository) CountParticipants(ctx context.Context) (map[string]int, error) {
	rows, err := db.Query(ctx, r.db, `SELECT rideId, COUNT(*) FROM participants GROUP BY rideId`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// AddParticipant locks the ride row so concurrent sign-ups cannot overfill it.
func (r *mysqlRepository) AddParticipant(ctx context.Context, p Participant) (*Participant, error) {
	if p.ID == "" {
		p.ID = utils.NewID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now().UTC()
	}

	err := db.WithTx(ctx, r.db, func(q db.Querier) error {
		var ride Ride
		err := q.QueryRowContext(ctx,
			`SELECT active, maxParticipants FROM rides WHERE id = ? FOR UPDATE`, p.RideID,
		).Scan(&ride.Active, &ride.MaxParticipants)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRideNotFound
		}
		if err != nil {
			return err
		}

		var count int
		if err := q.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM participants WHERE rideId = ?`, p.RideID,
		).Scan(&count); err != nil {
			return err
		}
		if err := acceptsSignup(ride, count); err != nil {
			return err
		}

		return InsertParticipant(ctx, q, p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *mysqlRepository) DeleteParticipant(ctx context.Context, id string) error {
	res, err := db.Exec(ctx, r.db, `DELETE FROM participants WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return db.Affected(res, ErrParticipantNotFound)
}
