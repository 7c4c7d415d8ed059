package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	"stayhook/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}

func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

// names encodes an alias list as a JSON array; nil becomes "[]".
func names(v []string) string {
	if v == nil {
		return "[]"
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func decodeNames(b []byte) []string {
	if len(b) == 0 {
		return nil
	}
	var out []string
	_ = json.Unmarshal(b, &out)
	return out
}

// isDuplicate reports a MySQL unique-key violation (ER_DUP_ENTRY).
func isDuplicate(err error) bool {
	var me *gomysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

/********** directory **********/

type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(s scanner) (domain.Entity, error) {
	var e domain.Entity
	var slug sql.NullString
	var airbnb, booking, vrbo []byte
	if err := s.Scan(&e.ID, &e.AccountID, &e.Name, &slug, &airbnb, &booking, &vrbo); err != nil {
		return domain.Entity{}, err
	}
	e.Slug = nullStr(slug)
	e.AirbnbNames, e.BookingNames, e.VrboNames = decodeNames(airbnb), decodeNames(booking), decodeNames(vrbo)
	return e, nil
}

func (r *Repo) ListEntities(ctx context.Context, accountID string) ([]domain.Entity, error) {
	rows, err := r.db.QueryContext(ctx, listPropertiesSQL, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repo) ListBillingUnits(ctx context.Context, accountID string) ([]domain.BillingUnit, error) {
	rows, err := r.db.QueryContext(ctx, listBillingUnitsSQL, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BillingUnit
	for rows.Next() {
		var b domain.BillingUnit
		var airbnb, booking, vrbo []byte
		if err := rows.Scan(&b.ID, &b.AccountID, &b.Name, &airbnb, &booking, &vrbo); err != nil {
			return nil, err
		}
		b.AirbnbNames, b.BookingNames, b.VrboNames = decodeNames(airbnb), decodeNames(booking), decodeNames(vrbo)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) FindByExternalID(ctx context.Context, accountID, platform, externalID string) (domain.Entity, error) {
	e, err := scanEntity(r.db.QueryRowContext(ctx, findByExternalIDSQL, platform, externalID, accountID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Entity{}, domain.ErrNotFound
	}
	return e, err
}

// UpsertEntity registers or renames a property. Used for seeding and by
// account tooling; the processor only reads.
func (r *Repo) UpsertEntity(ctx context.Context, e domain.Entity) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO properties (id, account_id, name, slug, airbnb_names, booking_names, vrbo_names)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name          = VALUES(name),
  slug          = VALUES(slug),
  airbnb_names  = VALUES(airbnb_names),
  booking_names = VALUES(booking_names),
  vrbo_names    = VALUES(vrbo_names)`,
		e.ID, e.AccountID, e.Name, valStr(e.Slug), names(e.AirbnbNames), names(e.BookingNames), names(e.VrboNames))
	return err
}

func (r *Repo) UpsertBillingUnit(ctx context.Context, b domain.BillingUnit) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO billing_units (id, account_id, name, airbnb_names, booking_names, vrbo_names)
VALUES (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name          = VALUES(name),
  airbnb_names  = VALUES(airbnb_names),
  booking_names = VALUES(booking_names),
  vrbo_names    = VALUES(vrbo_names)`,
		b.ID, b.AccountID, b.Name, names(b.AirbnbNames), names(b.BookingNames), names(b.VrboNames))
	return err
}

func (r *Repo) MapExternalID(ctx context.Context, platform, externalID, propertyID string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO property_external_ids (platform, external_id, property_id) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE property_id = VALUES(property_id)`, platform, externalID, propertyID)
	return err
}

/********** accounts **********/

func (r *Repo) HasModule(ctx context.Context, accountID, module string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, hasModuleSQL, accountID, module).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repo) HostName(ctx context.Context, accountID string) (string, error) {
	var name sql.NullString
	err := r.db.QueryRowContext(ctx, hostNameSQL, accountID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && (!name.Valid || name.String == "")) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return name.String, nil
}

/********** events **********/

func (r *Repo) CreateEvent(ctx context.Context, ev domain.InboundEvent) error {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	_, err = r.db.ExecContext(ctx, insertEventSQL,
		ev.ID, ev.AccountID, ev.Source, string(payload), valJSON(ev.RawJSON), string(ev.Status), ev.ReceivedAt.UTC())
	if isDuplicate(err) {
		return domain.ErrConflict
	}
	return err
}

func scanEvent(s scanner) (domain.InboundEvent, error) {
	var ev domain.InboundEvent
	var payload, raw []byte
	var status string
	var errMsg sql.NullString
	var processedAt sql.NullTime
	if err := s.Scan(&ev.ID, &ev.AccountID, &ev.Source, &payload, &raw, &status, &errMsg, &ev.ReceivedAt, &processedAt); err != nil {
		return domain.InboundEvent{}, err
	}
	if err := json.Unmarshal(payload, &ev.Payload); err != nil {
		return domain.InboundEvent{}, fmt.Errorf("decode payload of %s: %w", ev.ID, err)
	}
	if len(raw) > 0 {
		ev.RawJSON = append([]byte(nil), raw...)
	}
	ev.Status = domain.EventStatus(status)
	ev.Error = nullStr(errMsg)
	ev.ReceivedAt = ev.ReceivedAt.UTC()
	ev.ProcessedAt = nullTime(processedAt)
	return ev, nil
}

func (r *Repo) GetEvent(ctx context.Context, id string) (domain.InboundEvent, error) {
	ev, err := scanEvent(r.db.QueryRowContext(ctx, getEventSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.InboundEvent{}, domain.ErrNotFound
	}
	return ev, err
}

func (r *Repo) ListPending(ctx context.Context, limit int) ([]domain.InboundEvent, error) {
	rows, err := r.db.QueryContext(ctx, listPendingSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.InboundEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *Repo) MarkProcessing(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, markProcessingSQL, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *Repo) MarkProcessed(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, markProcessedSQL, at.UTC(), id)
	return err
}

func (r *Repo) MarkFailed(ctx context.Context, id, msg string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, markFailedSQL, msg, at.UTC(), id)
	return err
}

/********** guests / reservations **********/

func (r *Repo) FindGuestByEmail(ctx context.Context, accountID, email string) (domain.Guest, error) {
	var g domain.Guest
	err := r.db.QueryRowContext(ctx, findGuestSQL, accountID, email).Scan(&g.ID, &g.AccountID, &g.Name, &g.Email, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Guest{}, domain.ErrNotFound
	}
	return g, err
}

func (r *Repo) CreateGuest(ctx context.Context, g domain.Guest) error {
	_, err := r.db.ExecContext(ctx, insertGuestSQL, g.ID, g.AccountID, g.Name, g.Email, g.CreatedAt.UTC())
	if isDuplicate(err) {
		return domain.ErrConflict
	}
	return err
}

func (r *Repo) CreateReservation(ctx context.Context, rv domain.Reservation) error {
	_, err := r.db.ExecContext(ctx, insertReservationSQL,
		rv.ID, rv.AccountID, rv.EventID, rv.PropertyID,
		valStr(rv.BillingUnitID), valStr(rv.GuestID),
		rv.Channel, rv.ConfirmationCode, rv.GuestName, valStr(rv.GuestEmail),
		rv.CheckIn.UTC(), rv.CheckOut.UTC(), rv.Nights,
		rv.HostEarnings, rv.RoomTotal, rv.CleaningFee, rv.GuestServiceFee, rv.HostServiceFee,
		rv.Status, rv.ImportSource,
	)
	return err
}

func (r *Repo) FindReservationByCode(ctx context.Context, accountID, channel, code string) (domain.Reservation, error) {
	var rv domain.Reservation
	var buID, guestID, guestEmail sql.NullString
	err := r.db.QueryRowContext(ctx, findReservationSQL, accountID, channel, code).Scan(
		&rv.ID, &rv.AccountID, &rv.EventID, &rv.PropertyID, &buID, &guestID,
		&rv.Channel, &rv.ConfirmationCode, &rv.GuestName, &guestEmail,
		&rv.CheckIn, &rv.CheckOut, &rv.Nights,
		&rv.HostEarnings, &rv.RoomTotal, &rv.CleaningFee, &rv.GuestServiceFee, &rv.HostServiceFee,
		&rv.Status, &rv.ImportSource,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Reservation{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Reservation{}, err
	}
	rv.BillingUnitID, rv.GuestID, rv.GuestEmail = nullStr(buID), nullStr(guestID), nullStr(guestEmail)
	return rv, nil
}
