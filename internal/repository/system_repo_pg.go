package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SystemRepository persists snapshots of the whole aggregate. Load replays
// records through the store mutators in dependency order (customers and
// flights before the bookings that reference them); Save writes through the
// tombstone-preserving accessors so soft-deleted records survive a
// round-trip.
type SystemRepository interface {
	Load(ctx context.Context, opts ...domain.SystemOption) (*domain.FlightBookingSystem, error)
	Save(ctx context.Context, sys *domain.FlightBookingSystem) error
}

type PGSystemRepository struct {
	db *pgxpool.Pool
}

func NewSystemRepository(db *pgxpool.Pool) *PGSystemRepository {
	return &PGSystemRepository{db: db}
}

// EnsureSchema creates the snapshot tables when they do not exist yet.
func (r *PGSystemRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS customers (
			id       INT PRIMARY KEY,
			name     TEXT NOT NULL,
			phone    TEXT NOT NULL DEFAULT '',
			email    TEXT NOT NULL DEFAULT '',
			deleted  BOOLEAN NOT NULL DEFAULT FALSE
		);
		CREATE TABLE IF NOT EXISTS flights (
			id             INT PRIMARY KEY,
			number         TEXT NOT NULL,
			origin         TEXT NOT NULL,
			destination    TEXT NOT NULL,
			departure_date DATE NOT NULL,
			capacity       INT NOT NULL,
			base_price     DOUBLE PRECISION NOT NULL,
			deleted        BOOLEAN NOT NULL DEFAULT FALSE
		);
		CREATE TABLE IF NOT EXISTS bookings (
			id           INT PRIMARY KEY,
			ref          TEXT NOT NULL,
			customer_id  INT NOT NULL REFERENCES customers(id),
			flight_id    INT NOT NULL REFERENCES flights(id),
			booking_date DATE NOT NULL,
			class        TEXT NOT NULL,
			fee          DOUBLE PRECISION NOT NULL DEFAULT 0,
			canceled     BOOLEAN NOT NULL DEFAULT FALSE,
			deleted      BOOLEAN NOT NULL DEFAULT FALSE
		);
	`)
	return err
}

func (r *PGSystemRepository) Save(ctx context.Context, sys *domain.FlightBookingSystem) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM bookings; DELETE FROM flights; DELETE FROM customers`); err != nil {
		return err
	}

	for _, c := range sys.AllCustomers() {
		if _, err := tx.Exec(ctx, `INSERT INTO customers (id, name, phone, email, deleted) VALUES ($1, $2, $3, $4, $5)`,
			c.ID, c.Name, c.Phone, c.Email, c.Deleted()); err != nil {
			return fmt.Errorf("save customer %d: %w", c.ID, err)
		}
	}
	for _, f := range sys.AllFlights() {
		if _, err := tx.Exec(ctx, `INSERT INTO flights (id, number, origin, destination, departure_date, capacity, base_price, deleted) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			f.ID, f.Number, f.Origin, f.Destination, f.DepartureDate, f.Capacity, f.BasePrice, f.Deleted()); err != nil {
			return fmt.Errorf("save flight %d: %w", f.ID, err)
		}
	}
	for _, b := range sys.AllBookings() {
		if _, err := tx.Exec(ctx, `INSERT INTO bookings (id, ref, customer_id, flight_id, booking_date, class, fee, canceled, deleted) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			b.ID, b.Ref, b.Customer().ID, b.Flight().ID, b.BookingDate, string(b.Class), b.CancellationFee(), b.Canceled(), b.Deleted()); err != nil {
			return fmt.Errorf("save booking %d: %w", b.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PGSystemRepository) Load(ctx context.Context, opts ...domain.SystemOption) (*domain.FlightBookingSystem, error) {
	sys := domain.NewFlightBookingSystem(opts...)

	if err := r.loadCustomers(ctx, sys); err != nil {
		return nil, err
	}
	if err := r.loadFlights(ctx, sys); err != nil {
		return nil, err
	}
	if err := r.loadBookings(ctx, sys); err != nil {
		return nil, err
	}
	return sys, nil
}

func (r *PGSystemRepository) loadCustomers(ctx context.Context, sys *domain.FlightBookingSystem) error {
	rows, err := r.db.Query(ctx, `SELECT id, name, phone, email, deleted FROM customers ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id                 int
			name, phone, email string
			deleted            bool
		)
		if err := rows.Scan(&id, &name, &phone, &email, &deleted); err != nil {
			return err
		}
		c, err := domain.NewCustomer(id, name, phone, email)
		if err != nil {
			return fmt.Errorf("load customer %d: %w", id, err)
		}
		if err := sys.AddCustomer(c); err != nil {
			return fmt.Errorf("load customer %d: %w", id, err)
		}
		if deleted {
			if err := sys.RemoveCustomerByID(id); err != nil {
				return fmt.Errorf("load customer %d: %w", id, err)
			}
		}
	}
	return rows.Err()
}

func (r *PGSystemRepository) loadFlights(ctx context.Context, sys *domain.FlightBookingSystem) error {
	rows, err := r.db.Query(ctx, `SELECT id, number, origin, destination, departure_date, capacity, base_price, deleted FROM flights ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, capacity                int
			number, origin, destination string
			departure                   time.Time
			basePrice                   float64
			deleted                     bool
		)
		if err := rows.Scan(&id, &number, &origin, &destination, &departure, &capacity, &basePrice, &deleted); err != nil {
			return err
		}
		f, err := domain.NewFlight(id, number, origin, destination, departure, capacity, basePrice)
		if err != nil {
			return fmt.Errorf("load flight %d: %w", id, err)
		}
		if err := sys.AddFlight(f); err != nil {
			return fmt.Errorf("load flight %d: %w", id, err)
		}
		if deleted {
			if err := sys.RemoveFlightByID(id); err != nil {
				return fmt.Errorf("load flight %d: %w", id, err)
			}
		}
	}
	return rows.Err()
}

func (r *PGSystemRepository) loadBookings(ctx context.Context, sys *domain.FlightBookingSystem) error {
	rows, err := r.db.Query(ctx, `SELECT id, ref, customer_id, flight_id, booking_date, class, fee, canceled, deleted FROM bookings ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, customerID, flightID int
			ref, class               string
			bookingDate              time.Time
			fee                      float64
			canceled, deleted        bool
		)
		if err := rows.Scan(&id, &ref, &customerID, &flightID, &bookingDate, &class, &fee, &canceled, &deleted); err != nil {
			return err
		}

		customer, err := sys.CustomerByID(customerID, true)
		if err != nil {
			return fmt.Errorf("load booking %d: %w", id, err)
		}
		flight, err := sys.FlightByID(flightID, true)
		if err != nil {
			return fmt.Errorf("load booking %d: %w", id, err)
		}
		b, err := domain.NewBooking(customer, flight, bookingDate, domain.FlightClass(class))
		if err != nil {
			return fmt.Errorf("load booking %d: %w", id, err)
		}
		if err := sys.AddBooking(b); err != nil {
			return fmt.Errorf("load booking %d: %w", id, err)
		}
		// Bookings are never physically removed, so replaying them in
		// ascending id order must reproduce the stored ids exactly.
		if b.ID != id {
			return fmt.Errorf("load booking %d: id reassigned to %d", id, b.ID)
		}
		if err := sys.RestoreBookingState(id, ref, fee, canceled, deleted); err != nil {
			return fmt.Errorf("load booking %d: %w", id, err)
		}
	}
	return rows.Err()
}

var _ SystemRepository = (*PGSystemRepository)(nil)
