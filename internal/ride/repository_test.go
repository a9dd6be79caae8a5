package ride

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rideRowColumns = []string{"id", "title", "date", "startLocation", "distance", "description", "active", "maxParticipants"}

var rideDate = time.Date(2024, 6, 15, 8, 30, 0, 0, time.UTC)

func TestMySQLRepository_ListRides(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMySQLRepository(db)

	mock.ExpectQuery(`SELECT .* FROM rides ORDER BY date ASC`).
		WillReturnRows(sqlmock.NewRows(rideRowColumns).
			AddRow("r1", "Zondagrit", rideDate, "Clubhuis", 80, "", true, 20))

	rides, err := repo.ListRides(context.Background())
	require.NoError(t, err)
	require.Len(t, rides, 1)
	assert.Equal(t, "Clubhuis", rides[0].StartLocation)
	assert.Equal(t, 20, rides[0].MaxParticipants)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLRepository_RideWrites(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMySQLRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO rides`).
		WithArgs("r1", "Zondagrit", rideDate, "Clubhuis", 80, "", true, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	_, err = repo.CreateRide(ctx, Ride{ID: "r1", Title: "Zondagrit", Date: rideDate, StartLocation: "Clubhuis", Distance: 80, Active: true})
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE rides\s+SET title = \?`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateRide(ctx, Ride{ID: "missing"}), ErrRideNotFound)

	mock.ExpectExec(`DELETE FROM rides WHERE id = \?`).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.DeleteRide(ctx, "r1"))

	mock.ExpectExec(`UPDATE rides SET active = NOT active`).
		WithArgs("r2").
		WillReturnResult(sqlmock.NewResult(0, 0))
	_, err = repo.ToggleActive(ctx, "r2")
	assert.ErrorIs(t, err, ErrRideNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLRepository_AddParticipant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMySQLRepository(db)
	ctx := context.Background()
	signedUp := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	orig := now
	now = func() time.Time { return signedUp }
	defer func() { now = orig }()

	expectRide := func(active bool, max, count int) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT active, maxParticipants FROM rides WHERE id = \? FOR UPDATE`).
			WithArgs("r1").
			WillReturnRows(sqlmock.NewRows([]string{"active", "maxParticipants"}).AddRow(active, max))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM participants WHERE rideId = \?`).
			WithArgs("r1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
	}

	t.Run("Success", func(t *testing.T) {
		expectRide(true, 10, 3)
		mock.ExpectExec(`INSERT INTO participants`).
			WithArgs("p1", "r1", "Piet", "piet@example.com", "", signedUp).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		p, err := repo.AddParticipant(ctx, Participant{ID: "p1", RideID: "r1", Name: "Piet", Email: "piet@example.com"})
		require.NoError(t, err)
		assert.Equal(t, signedUp, p.CreatedAt)
	})

	t.Run("Full", func(t *testing.T) {
		expectRide(true, 2, 2)
		mock.ExpectRollback()

		_, err := repo.AddParticipant(ctx, Participant{RideID: "r1", Name: "Piet"})
		assert.ErrorIs(t, err, ErrRideFull)
	})

	t.Run("Closed", func(t *testing.T) {
		expectRide(false, 0, 0)
		mock.ExpectRollback()

		_, err := repo.AddParticipant(ctx, Participant{RideID: "r1", Name: "Piet"})
		assert.ErrorIs(t, err, ErrRideClosed)
	})

	t.Run("Unknown ride", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM rides WHERE id = \? FOR UPDATE`).
			WithArgs("r1").
			WillReturnRows(sqlmock.NewRows([]string{"active", "maxParticipants"}))
		mock.ExpectRollback()

		_, err := repo.AddParticipant(ctx, Participant{RideID: "r1", Name: "Piet"})
		assert.ErrorIs(t, err, ErrRideNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLRepository_Participants(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMySQLRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT .* FROM participants WHERE rideId = \? ORDER BY createdAt ASC`).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "rideId", "name", "email", "phone", "createdAt"}).
			AddRow("p1", "r1", "Piet", "piet@example.com", "", rideDate))
	ps, err := repo.ListParticipants(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "Piet", ps[0].Name)

	mock.ExpectQuery(`SELECT rideId, COUNT\(\*\) FROM participants GROUP BY rideId`).
		WillReturnRows(sqlmock.NewRows([]string{"rideId", "count"}).AddRow("r1", 4))
	counts, err := repo.CountParticipants(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"r1": 4}, counts)

	mock.ExpectExec(`DELETE FROM participants WHERE id = \?`).
		WithArgs("p9").
		WillReturnError(errors.New("db down"))
	assert.ErrorContains(t, repo.DeleteParticipant(ctx, "p9"), "db down")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJSONRepository_RidesAndParticipants(t *testing.T) {
	repo := NewJSONRepository(filepath.Join(t.TempDir(), "data"))
	ctx := context.Background()

	later, err := repo.CreateRide(ctx, Ride{Title: "Later", Date: rideDate.AddDate(0, 1, 0), Active: true})
	require.NoError(t, err)
	ride, err := repo.CreateRide(ctx, Ride{Title: "Zondagrit", Date: rideDate, Active: true, MaxParticipants: 2})
	require.NoError(t, err)

	rides, err := repo.ListRides(ctx)
	require.NoError(t, err)
	require.Len(t, rides, 2)
	assert.Equal(t, ride.ID, rides[0].ID)

	_, err = repo.AddParticipant(ctx, Participant{RideID: ride.ID, Name: "A"})
	require.NoError(t, err)
	_, err = repo.AddParticipant(ctx, Participant{RideID: ride.ID, Name: "B"})
	require.NoError(t, err)
	_, err = repo.AddParticipant(ctx, Participant{RideID: ride.ID, Name: "C"})
	assert.ErrorIs(t, err, ErrRideFull)

	_, err = repo.AddParticipant(ctx, Participant{RideID: later.ID, Name: "D"})
	require.NoError(t, err)
	_, err = repo.AddParticipant(ctx, Participant{RideID: "missing", Name: "E"})
	assert.ErrorIs(t, err, ErrRideNotFound)

	counts, err := repo.CountParticipants(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[ride.ID])
	assert.Equal(t, 1, counts[later.ID])

	toggled, err := repo.ToggleActive(ctx, later.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Active)
	_, err = repo.AddParticipant(ctx, Participant{RideID: later.ID, Name: "F"})
	assert.ErrorIs(t, err, ErrRideClosed)

	require.NoError(t, repo.DeleteRide(ctx, ride.ID))
	ps, err := repo.ListParticipants(ctx, ride.ID)
	require.NoError(t, err)
	assert.Empty(t, ps)

	ps, err = repo.ListParticipants(ctx, later.ID)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	require.NoError(t, repo.DeleteParticipant(ctx, ps[0].ID))
	assert.ErrorIs(t, repo.DeleteParticipant(ctx, ps[0].ID), ErrParticipantNotFound)

	later.Title = "Renamed"
	require.NoError(t, repo.UpdateRide(ctx, *later))
	got, err := repo.GetRide(ctx, later.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.ErrorIs(t, repo.DeleteRide(ctx, ride.ID), ErrRideNotFound)
}

func TestJSONRepository_ConcurrentSignupsRespectLimit(t *testing.T) {
	repo := NewJSONRepository(filepath.Join(t.TempDir(), "data"))
	ctx := context.Background()

	ride, err := repo.CreateRide(ctx, Ride{Title: "Klein", Date: rideDate, Active: true, MaxParticipants: 3})
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		full int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AddParticipant(ctx, Participant{RideID: ride.ID, Name: "rider"})
			if errors.Is(err, ErrRideFull) {
				mu.Lock()
				full++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	ps, err := repo.ListParticipants(ctx, ride.ID)
	require.NoError(t, err)
	assert.Len(t, ps, 3)
	assert.Equal(t, 5, full)
}
