package mysql

// -----------------------------------------------------------------------------
// DIRECTORY
// -----------------------------------------------------------------------------

const listPropertiesSQL = `
SELECT id, account_id, name, slug, airbnb_names, booking_names, vrbo_names
FROM properties
WHERE account_id = ? AND deleted_at IS NULL
ORDER BY created_at, id
`

const listBillingUnitsSQL = `
SELECT id, account_id, name, airbnb_names, booking_names, vrbo_names
FROM billing_units
WHERE account_id = ?
ORDER BY created_at, id
`

// The account check lives in the join so a foreign mapping reads as absent.
const findByExternalIDSQL = `
SELECT p.id, p.account_id, p.name, p.slug, p.airbnb_names, p.booking_names, p.vrbo_names
FROM property_external_ids x
JOIN properties p ON p.id = x.property_id
WHERE x.platform = ? AND x.external_id = ? AND p.account_id = ? AND p.deleted_at IS NULL
`

const hasModuleSQL = `
SELECT COUNT(*) FROM account_modules WHERE account_id = ? AND module = ? AND active = 1
`

const hostNameSQL = `SELECT host_name FROM accounts WHERE id = ?`

// -----------------------------------------------------------------------------
// EVENTS
// -----------------------------------------------------------------------------

const insertEventSQL = `
INSERT INTO inbound_events (id, account_id, source, payload, raw, status, received_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

const selectEventCols = `
SELECT id, account_id, source, payload, raw, status, error, received_at, processed_at
FROM inbound_events
`

const getEventSQL = selectEventCols + `WHERE id = ?`

const listPendingSQL = selectEventCols + `WHERE status = 'PENDING' ORDER BY received_at, id LIMIT ?`

const markProcessingSQL = `
UPDATE inbound_events SET status = 'PROCESSING' WHERE id = ? AND status = 'PENDING'
`

const markProcessedSQL = `
UPDATE inbound_events SET status = 'PROCESSED', error = NULL, processed_at = ? WHERE id = ?
`

const markFailedSQL = `
UPDATE inbound_events SET status = 'FAILED', error = ?, processed_at = ? WHERE id = ?
`

// -----------------------------------------------------------------------------
// GUESTS / RESERVATIONS
// -----------------------------------------------------------------------------

const findGuestSQL = `
SELECT id, account_id, name, email, created_at FROM guests WHERE account_id = ? AND email = LOWER(?)
`

const insertGuestSQL = `
INSERT INTO guests (id, account_id, name, email, created_at)
VALUES (?, ?, ?, LOWER(?), ?)
`

const insertReservationSQL = `
INSERT INTO reservations
  (id, account_id, event_id, property_id, billing_unit_id, guest_id, channel, confirmation_code,
   guest_name, guest_email, check_in, check_out, nights, host_earnings, room_total,
   cleaning_fee, guest_service_fee, host_service_fee, status, import_source)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const findReservationSQL = `
SELECT id, account_id, event_id, property_id, billing_unit_id, guest_id, channel, confirmation_code,
       guest_name, guest_email, check_in, check_out, nights, host_earnings, room_total,
       cleaning_fee, guest_service_fee, host_service_fee, status, import_source
FROM reservations
WHERE account_id = ? AND channel = ? AND confirmation_code = ?
ORDER BY created_at
LIMIT 1
`

// -----------------------------------------------------------------------------
// DELIVERY LEDGER
// -----------------------------------------------------------------------------

const ensureDeliveryLockSQL = `INSERT IGNORE INTO delivery_locks (property_id, guest_email) VALUES (?, LOWER(?))`

const lockDeliveryPairSQL = `
SELECT property_id FROM delivery_locks WHERE property_id = ? AND guest_email = LOWER(?) FOR UPDATE
`

// SENT rows block for the dedupe window; PENDING rows only while in flight.
// FAILED rows never block.
const countBlockingDeliveriesSQL = `
SELECT COUNT(*) FROM guidebook_deliveries
WHERE property_id = ? AND guest_email = LOWER(?)
  AND ((status = 'SENT' AND sent_at > ?) OR (status = 'PENDING' AND created_at > ?))
`

const insertDeliverySQL = `
INSERT INTO guidebook_deliveries
  (id, property_id, reservation_id, guest_email, guest_name, language, guide_url, status, source, created_at)
VALUES
  (?, ?, ?, LOWER(?), ?, ?, ?, ?, ?, ?)
`

const completeDeliverySQL = `
UPDATE guidebook_deliveries SET status = ?, sent_at = ?, provider_id = ? WHERE id = ?
`
