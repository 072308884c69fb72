/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements flightops.TxStore (which embeds ledger.Store) over a single
  SQLite database. The same patterns apply to PostgreSQL - only dialect
  differences.

KEY TABLES:
  aircraft:     Current HOBBS/TACH per tail number
  components:   Per-part accumulated hours and TBO limits
  flights:      Immutable approved flight records
  submissions:  Pilot submissions and their workflow state
  entries:      The financial ledger (signed amounts)
  deposits:     Pending/approved cash deposits
  fuel_logs:    Pending/approved fuel purchases

TRANSACTIONS:
  WithTx opens one database transaction and hands the caller a Store bound
  to it; every read and write inside the callback sees the transaction.
  This is what lets the orchestrators re-check submission state inside the
  atomic unit.

CONCURRENCY:
  A sync.RWMutex serializes writers on top of SQLite's single-writer model.
  WAL mode keeps readers unblocked.

DECIMALS:
  All meter readings and money are stored as TEXT and parsed with
  shopspring/decimal. SQLite REAL would lose precision on money.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/clubaereo/bitacora/flightops"
	"github.com/clubaereo/bitacora/ledger"
)

// Store implements flightops.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New opens (or creates) the database at dbPath. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS aircraft (
		matricula TEXT PRIMARY KEY,
		hobbs_actual TEXT NOT NULL,
		tach_actual TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS components (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		matricula TEXT NOT NULL REFERENCES aircraft(matricula),
		tipo TEXT NOT NULL,
		horas_acumuladas TEXT,
		limite_tbo TEXT NOT NULL,
		UNIQUE(matricula, tipo)
	);

	CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		estado TEXT NOT NULL,
		hobbs_final TEXT,
		tach_final TEXT,
		piloto_id TEXT NOT NULL,
		matricula TEXT NOT NULL,
		copiloto TEXT,
		remarks TEXT,
		ruta TEXT,
		flight_id INTEGER,
		cancel_reason TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_submissions_estado
		ON submissions(estado);

	CREATE TABLE IF NOT EXISTS flights (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fecha TEXT NOT NULL,
		hobbs_inicio TEXT NOT NULL,
		hobbs_fin TEXT NOT NULL,
		tach_inicio TEXT NOT NULL,
		tach_fin TEXT NOT NULL,
		diff_hobbs TEXT NOT NULL,
		diff_tach TEXT NOT NULL,
		costo TEXT NOT NULL,
		tarifa TEXT NOT NULL,
		tarifa_instructor TEXT NOT NULL,
		horas_airframe TEXT,
		horas_engine TEXT,
		horas_propeller TEXT,
		cliente TEXT NOT NULL,
		matricula TEXT NOT NULL REFERENCES aircraft(matricula),
		piloto_id TEXT NOT NULL,
		submission_id INTEGER NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	);

	-- Baseline resolution hot path: latest flight by flight date, then
	-- creation time. Never by autoincrement id; flights get back-dated.
	CREATE INDEX IF NOT EXISTS idx_flights_matricula_fecha
		ON flights(matricula, fecha DESC, created_at DESC);

	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		piloto_id TEXT NOT NULL,
		monto TEXT NOT NULL,
		tipo TEXT NOT NULL,
		flight_id INTEGER,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_piloto
		ON entries(piloto_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_entries_flight
		ON entries(flight_id) WHERE flight_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS deposits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		piloto_id TEXT NOT NULL,
		monto TEXT NOT NULL,
		fecha TEXT NOT NULL,
		estado TEXT NOT NULL DEFAULT 'PENDIENTE',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS fuel_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		piloto_id TEXT NOT NULL,
		monto TEXT NOT NULL,
		litros TEXT NOT NULL,
		fecha TEXT NOT NULL,
		estado TEXT NOT NULL DEFAULT 'PENDIENTE',
		created_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONAL STORE (flightops.TxStore interface)
// =============================================================================

// WithTx executes fn within one database transaction. Reads inside the
// callback see the transaction's own writes.
func (s *Store) WithTx(ctx context.Context, fn func(store flightops.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{q: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore runs every operation against one *sql.Tx. The parent's mutex is
// held for the whole WithTx, so no extra locking here.
type txStore struct {
	q *sql.Tx
}

// =============================================================================
// SUBMISSIONS
// =============================================================================

func (s *Store) Submission(ctx context.Context, id int64) (*flightops.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getSubmission(ctx, s.db, id)
}

func (t *txStore) Submission(ctx context.Context, id int64) (*flightops.Submission, error) {
	return getSubmission(ctx, t.q, id)
}

func getSubmission(ctx context.Context, q querier, id int64) (*flightops.Submission, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, estado, hobbs_final, tach_final, piloto_id, matricula,
		       copiloto, remarks, ruta, flight_id, cancel_reason, created_at, updated_at
		FROM submissions WHERE id = ?`, id)
	sub, err := scanSubmission(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*flightops.Submission, error) {
	var (
		sub          flightops.Submission
		hobbsFinal   sql.NullString
		tachFinal    sql.NullString
		copiloto     sql.NullString
		remarks      sql.NullString
		ruta         sql.NullString
		flightID     sql.NullInt64
		cancelReason sql.NullString
		createdAt    string
		updatedAt    string
	)

	err := row.Scan(&sub.ID, &sub.Status, &hobbsFinal, &tachFinal,
		&sub.PilotID, &sub.Matricula, &copiloto, &remarks, &ruta,
		&flightID, &cancelReason, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	sub.FinalHobbs = parseNullDecimal(hobbsFinal)
	sub.FinalTach = parseNullDecimal(tachFinal)
	sub.Copilot = copiloto.String
	sub.Remarks = remarks.String
	sub.Route = ruta.String
	sub.CancelReason = cancelReason.String
	if flightID.Valid {
		v := flightID.Int64
		sub.FlightID = &v
	}
	sub.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	sub.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &sub, nil
}

func (s *Store) SaveSubmission(ctx context.Context, sub *flightops.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveSubmission(ctx, s.db, sub)
}

func (t *txStore) SaveSubmission(ctx context.Context, sub *flightops.Submission) error {
	return saveSubmission(ctx, t.q, sub)
}

func saveSubmission(ctx context.Context, q querier, sub *flightops.Submission) error {
	now := time.Now().UTC().Format(time.RFC3339)

	if sub.ID == 0 {
		res, err := q.ExecContext(ctx, `
			INSERT INTO submissions
			(estado, hobbs_final, tach_final, piloto_id, matricula, copiloto,
			 remarks, ruta, flight_id, cancel_reason, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sub.Status, nullDecimal(sub.FinalHobbs), nullDecimal(sub.FinalTach),
			sub.PilotID, sub.Matricula, sub.Copilot, sub.Remarks, sub.Route,
			nullInt64(sub.FlightID), sub.CancelReason, now, now)
		if err != nil {
			return fmt.Errorf("failed to insert submission: %w", err)
		}
		sub.ID, err = res.LastInsertId()
		return err
	}

	_, err := q.ExecContext(ctx, `
		UPDATE submissions SET
			estado = ?, hobbs_final = ?, tach_final = ?, copiloto = ?,
			remarks = ?, ruta = ?, flight_id = ?, cancel_reason = ?, updated_at = ?
		WHERE id = ?`,
		sub.Status, nullDecimal(sub.FinalHobbs), nullDecimal(sub.FinalTach),
		sub.Copilot, sub.Remarks, sub.Route, nullInt64(sub.FlightID),
		sub.CancelReason, now, sub.ID)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}
	return nil
}

func (s *Store) PendingSubmissions(ctx context.Context) ([]flightops.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pendingSubmissions(ctx, s.db)
}

func (t *txStore) PendingSubmissions(ctx context.Context) ([]flightops.Submission, error) {
	return pendingSubmissions(ctx, t.q)
}

func pendingSubmissions(ctx context.Context, q querier) ([]flightops.Submission, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, estado, hobbs_final, tach_final, piloto_id, matricula,
		       copiloto, remarks, ruta, flight_id, cancel_reason, created_at, updated_at
		FROM submissions
		WHERE estado IN (?, ?)
		ORDER BY created_at ASC`,
		flightops.StatusPendiente, flightops.StatusEsperandoAprobacion)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var subs []flightops.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// =============================================================================
// FLIGHTS
// =============================================================================

func (s *Store) InsertFlight(ctx context.Context, f *flightops.Flight) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertFlight(ctx, s.db, f)
}

func (t *txStore) InsertFlight(ctx context.Context, f *flightops.Flight) (int64, error) {
	return insertFlight(ctx, t.q, f)
}

func insertFlight(ctx context.Context, q querier, f *flightops.Flight) (int64, error) {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO flights
		(fecha, hobbs_inicio, hobbs_fin, tach_inicio, tach_fin, diff_hobbs,
		 diff_tach, costo, tarifa, tarifa_instructor, horas_airframe,
		 horas_engine, horas_propeller, cliente, matricula, piloto_id,
		 submission_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.Date.UTC().Format(time.RFC3339),
		f.HobbsStart.String(), f.HobbsEnd.String(),
		f.TachStart.String(), f.TachEnd.String(),
		f.DiffHobbs.String(), f.DiffTach.String(),
		f.Cost.String(), f.Rate.String(), f.InstructorRate.String(),
		nullDecimal(f.AirframeHours), nullDecimal(f.EngineHours), nullDecimal(f.PropellerHours),
		f.Client, f.Matricula, f.PilotID, f.SubmissionID,
		f.CreatedAt.Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraintError(err) {
			return 0, fmt.Errorf("submission %d already has a flight: %w", f.SubmissionID, err)
		}
		return 0, fmt.Errorf("failed to insert flight: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	f.ID = id
	return id, nil
}

func (s *Store) DeleteFlight(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteFlight(ctx, s.db, id)
}

func (t *txStore) DeleteFlight(ctx context.Context, id int64) error {
	return deleteFlight(ctx, t.q, id)
}

func deleteFlight(ctx context.Context, q querier, id int64) error {
	_, err := q.ExecContext(ctx, "DELETE FROM flights WHERE id = ?", id)
	return err
}

const flightColumns = `
	id, fecha, hobbs_inicio, hobbs_fin, tach_inicio, tach_fin, diff_hobbs,
	diff_tach, costo, tarifa, tarifa_instructor, horas_airframe,
	horas_engine, horas_propeller, cliente, matricula, piloto_id,
	submission_id, created_at`

func (s *Store) FlightBySubmission(ctx context.Context, submissionID int64) (*flightops.Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return flightBySubmission(ctx, s.db, submissionID)
}

func (t *txStore) FlightBySubmission(ctx context.Context, submissionID int64) (*flightops.Flight, error) {
	return flightBySubmission(ctx, t.q, submissionID)
}

func flightBySubmission(ctx context.Context, q querier, submissionID int64) (*flightops.Flight, error) {
	row := q.QueryRowContext(ctx,
		"SELECT"+flightColumns+" FROM flights WHERE submission_id = ?", submissionID)
	f, err := scanFlight(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return f, err
}

func (s *Store) LatestFlight(ctx context.Context, matricula string) (*flightops.Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return latestFlight(ctx, s.db, matricula)
}

func (t *txStore) LatestFlight(ctx context.Context, matricula string) (*flightops.Flight, error) {
	return latestFlight(ctx, t.q, matricula)
}

func latestFlight(ctx context.Context, q querier, matricula string) (*flightops.Flight, error) {
	row := q.QueryRowContext(ctx,
		"SELECT"+flightColumns+` FROM flights
		WHERE matricula = ?
		ORDER BY fecha DESC, created_at DESC, id DESC
		LIMIT 1`, matricula)
	f, err := scanFlight(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return f, err
}

func (s *Store) FlightsByAircraft(ctx context.Context, matricula string) ([]flightops.Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return flightsByAircraft(ctx, s.db, matricula)
}

func (t *txStore) FlightsByAircraft(ctx context.Context, matricula string) ([]flightops.Flight, error) {
	return flightsByAircraft(ctx, t.q, matricula)
}

func flightsByAircraft(ctx context.Context, q querier, matricula string) ([]flightops.Flight, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT"+flightColumns+` FROM flights
		WHERE matricula = ?
		ORDER BY fecha DESC, created_at DESC, id DESC`, matricula)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer rows.Close()

	var flights []flightops.Flight
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func scanFlight(row rowScanner) (*flightops.Flight, error) {
	var (
		f                                         flightops.Flight
		fecha, createdAt                          string
		hobbsIni, hobbsFin, tachIni, tachFin      string
		diffHobbs, diffTach, costo, tarifa, instr string
		airframe, engine, propeller               sql.NullString
	)

	err := row.Scan(&f.ID, &fecha, &hobbsIni, &hobbsFin, &tachIni, &tachFin,
		&diffHobbs, &diffTach, &costo, &tarifa, &instr,
		&airframe, &engine, &propeller,
		&f.Client, &f.Matricula, &f.PilotID, &f.SubmissionID, &createdAt)
	if err != nil {
		return nil, err
	}

	f.Date, _ = time.Parse(time.RFC3339, fecha)
	f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	f.HobbsStart = mustDecimal(hobbsIni)
	f.HobbsEnd = mustDecimal(hobbsFin)
	f.TachStart = mustDecimal(tachIni)
	f.TachEnd = mustDecimal(tachFin)
	f.DiffHobbs = mustDecimal(diffHobbs)
	f.DiffTach = mustDecimal(diffTach)
	f.Cost = mustDecimal(costo)
	f.Rate = mustDecimal(tarifa)
	f.InstructorRate = mustDecimal(instr)
	f.AirframeHours = parseNullDecimal(airframe)
	f.EngineHours = parseNullDecimal(engine)
	f.PropellerHours = parseNullDecimal(propeller)
	return &f, nil
}

// =============================================================================
// AIRCRAFT
// =============================================================================

func (s *Store) Aircraft(ctx context.Context, matricula string) (*flightops.Aircraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getAircraft(ctx, s.db, matricula)
}

func (t *txStore) Aircraft(ctx context.Context, matricula string) (*flightops.Aircraft, error) {
	return getAircraft(ctx, t.q, matricula)
}

func getAircraft(ctx context.Context, q querier, matricula string) (*flightops.Aircraft, error) {
	var (
		a           flightops.Aircraft
		hobbs, tach string
	)
	err := q.QueryRowContext(ctx,
		"SELECT matricula, hobbs_actual, tach_actual FROM aircraft WHERE matricula = ?",
		matricula).Scan(&a.Matricula, &hobbs, &tach)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.Hobbs = mustDecimal(hobbs)
	a.Tach = mustDecimal(tach)
	return &a, nil
}

func (s *Store) ListAircraft(ctx context.Context) ([]flightops.Aircraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listAircraft(ctx, s.db)
}

func (t *txStore) ListAircraft(ctx context.Context) ([]flightops.Aircraft, error) {
	return listAircraft(ctx, t.q)
}

func listAircraft(ctx context.Context, q querier) ([]flightops.Aircraft, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT matricula, hobbs_actual, tach_actual FROM aircraft ORDER BY matricula")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fleet []flightops.Aircraft
	for rows.Next() {
		var (
			a           flightops.Aircraft
			hobbs, tach string
		)
		if err := rows.Scan(&a.Matricula, &hobbs, &tach); err != nil {
			return nil, err
		}
		a.Hobbs = mustDecimal(hobbs)
		a.Tach = mustDecimal(tach)
		fleet = append(fleet, a)
	}
	return fleet, rows.Err()
}

// SaveAircraft inserts or replaces an aircraft. Used for provisioning and
// admin baseline corrections.
func (s *Store) SaveAircraft(ctx context.Context, a flightops.Aircraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO aircraft (matricula, hobbs_actual, tach_actual)
		VALUES (?, ?, ?)
		ON CONFLICT(matricula) DO UPDATE SET
			hobbs_actual = excluded.hobbs_actual,
			tach_actual = excluded.tach_actual`,
		a.Matricula, a.Hobbs.String(), a.Tach.String())
	return err
}

func (s *Store) UpdateAircraftCounters(ctx context.Context, matricula string, hobbs, tach decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateAircraftCounters(ctx, s.db, matricula, hobbs, tach)
}

func (t *txStore) UpdateAircraftCounters(ctx context.Context, matricula string, hobbs, tach decimal.Decimal) error {
	return updateAircraftCounters(ctx, t.q, matricula, hobbs, tach)
}

func updateAircraftCounters(ctx context.Context, q querier, matricula string, hobbs, tach decimal.Decimal) error {
	_, err := q.ExecContext(ctx,
		"UPDATE aircraft SET hobbs_actual = ?, tach_actual = ? WHERE matricula = ?",
		hobbs.String(), tach.String(), matricula)
	return err
}

// =============================================================================
// COMPONENTS
// =============================================================================

// SaveComponent inserts or updates a component row. Provisioning only; the
// orchestrators go through UpdateComponentHours.
func (s *Store) SaveComponent(ctx context.Context, c *flightops.Component) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO components (matricula, tipo, horas_acumuladas, limite_tbo)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(matricula, tipo) DO UPDATE SET
			horas_acumuladas = excluded.horas_acumuladas,
			limite_tbo = excluded.limite_tbo`,
		c.Matricula, c.Type, nullDecimal(c.Hours), c.TBOLimit.String())
	if err != nil {
		return err
	}
	if c.ID == 0 {
		c.ID, _ = res.LastInsertId()
	}
	return nil
}

func (s *Store) Components(ctx context.Context, matricula string) ([]flightops.Component, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return components(ctx, s.db, matricula)
}

func (t *txStore) Components(ctx context.Context, matricula string) ([]flightops.Component, error) {
	return components(ctx, t.q, matricula)
}

func components(ctx context.Context, q querier, matricula string) ([]flightops.Component, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, matricula, tipo, horas_acumuladas, limite_tbo
		FROM components WHERE matricula = ? ORDER BY tipo`, matricula)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []flightops.Component
	for rows.Next() {
		var (
			c     flightops.Component
			horas sql.NullString
			tbo   string
		)
		if err := rows.Scan(&c.ID, &c.Matricula, &c.Type, &horas, &tbo); err != nil {
			return nil, err
		}
		c.Hours = parseNullDecimal(horas)
		c.TBOLimit = mustDecimal(tbo)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpdateComponentHours(ctx context.Context, componentID int64, hours decimal.NullDecimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateComponentHours(ctx, s.db, componentID, hours)
}

func (t *txStore) UpdateComponentHours(ctx context.Context, componentID int64, hours decimal.NullDecimal) error {
	return updateComponentHours(ctx, t.q, componentID, hours)
}

func updateComponentHours(ctx context.Context, q querier, componentID int64, hours decimal.NullDecimal) error {
	_, err := q.ExecContext(ctx,
		"UPDATE components SET horas_acumuladas = ? WHERE id = ?",
		nullDecimal(hours), componentID)
	return err
}

// =============================================================================
// LEDGER (ledger.Store interface)
// =============================================================================

func (s *Store) AppendEntry(ctx context.Context, e ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendEntry(ctx, s.db, e)
}

func (t *txStore) AppendEntry(ctx context.Context, e ledger.Entry) error {
	return appendEntry(ctx, t.q, e)
}

func appendEntry(ctx context.Context, q querier, e ledger.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO entries (id, piloto_id, monto, tipo, flight_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.PilotID, e.Amount.String(), e.Kind,
		nullInt64(e.FlightID), e.CreatedAt.Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraintError(err) {
			return ledger.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to append entry: %w", err)
	}
	return nil
}

func (s *Store) EntriesByPilot(ctx context.Context, pilotID string) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return entriesByPilot(ctx, s.db, pilotID)
}

func (t *txStore) EntriesByPilot(ctx context.Context, pilotID string) ([]ledger.Entry, error) {
	return entriesByPilot(ctx, t.q, pilotID)
}

func entriesByPilot(ctx context.Context, q querier, pilotID string) ([]ledger.Entry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, piloto_id, monto, tipo, flight_id, created_at
		FROM entries WHERE piloto_id = ?
		ORDER BY created_at ASC, id ASC`, pilotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) EntryByFlight(ctx context.Context, flightID int64) (*ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return entryByFlight(ctx, s.db, flightID)
}

func (t *txStore) EntryByFlight(ctx context.Context, flightID int64) (*ledger.Entry, error) {
	return entryByFlight(ctx, t.q, flightID)
}

func entryByFlight(ctx context.Context, q querier, flightID int64) (*ledger.Entry, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, piloto_id, monto, tipo, flight_id, created_at
		FROM entries WHERE flight_id = ?`, flightID)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) RemoveByFlight(ctx context.Context, flightID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeByFlight(ctx, s.db, flightID)
}

func (t *txStore) RemoveByFlight(ctx context.Context, flightID int64) error {
	return removeByFlight(ctx, t.q, flightID)
}

func removeByFlight(ctx context.Context, q querier, flightID int64) error {
	_, err := q.ExecContext(ctx, "DELETE FROM entries WHERE flight_id = ?", flightID)
	return err
}

func scanEntry(row rowScanner) (ledger.Entry, error) {
	var (
		e         ledger.Entry
		monto     string
		flightID  sql.NullInt64
		createdAt string
	)
	err := row.Scan(&e.ID, &e.PilotID, &monto, &e.Kind, &flightID, &createdAt)
	if err != nil {
		return e, err
	}
	e.Amount = mustDecimal(monto)
	if flightID.Valid {
		v := flightID.Int64
		e.FlightID = &v
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return e, nil
}

// =============================================================================
// DEPOSITS AND FUEL LOGS
// =============================================================================

func (s *Store) Deposit(ctx context.Context, id int64) (*flightops.Deposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getDeposit(ctx, s.db, id)
}

func (t *txStore) Deposit(ctx context.Context, id int64) (*flightops.Deposit, error) {
	return getDeposit(ctx, t.q, id)
}

func getDeposit(ctx context.Context, q querier, id int64) (*flightops.Deposit, error) {
	var (
		d            flightops.Deposit
		monto, fecha string
		createdAt    string
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, piloto_id, monto, fecha, estado, created_at
		FROM deposits WHERE id = ?`, id).
		Scan(&d.ID, &d.PilotID, &monto, &fecha, &d.Status, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d.Amount = mustDecimal(monto)
	d.Date, _ = time.Parse(time.RFC3339, fecha)
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &d, nil
}

func (s *Store) SaveDeposit(ctx context.Context, d *flightops.Deposit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveDeposit(ctx, s.db, d)
}

func (t *txStore) SaveDeposit(ctx context.Context, d *flightops.Deposit) error {
	return saveDeposit(ctx, t.q, d)
}

func saveDeposit(ctx context.Context, q querier, d *flightops.Deposit) error {
	if d.Status == "" {
		d.Status = flightops.FinancePendiente
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO deposits (piloto_id, monto, fecha, estado, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		d.PilotID, d.Amount.String(), d.Date.UTC().Format(time.RFC3339),
		d.Status, d.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert deposit: %w", err)
	}
	d.ID, err = res.LastInsertId()
	return err
}

func (s *Store) MarkDepositApproved(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return markEstado(ctx, s.db, "deposits", id)
}

func (t *txStore) MarkDepositApproved(ctx context.Context, id int64) error {
	return markEstado(ctx, t.q, "deposits", id)
}

func (s *Store) DeleteDeposit(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM deposits WHERE id = ?", id)
	return err
}

func (t *txStore) DeleteDeposit(ctx context.Context, id int64) error {
	_, err := t.q.ExecContext(ctx, "DELETE FROM deposits WHERE id = ?", id)
	return err
}

func (s *Store) FuelLog(ctx context.Context, id int64) (*flightops.FuelLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getFuelLog(ctx, s.db, id)
}

func (t *txStore) FuelLog(ctx context.Context, id int64) (*flightops.FuelLog, error) {
	return getFuelLog(ctx, t.q, id)
}

func getFuelLog(ctx context.Context, q querier, id int64) (*flightops.FuelLog, error) {
	var (
		f                    flightops.FuelLog
		monto, litros, fecha string
		createdAt            string
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, piloto_id, monto, litros, fecha, estado, created_at
		FROM fuel_logs WHERE id = ?`, id).
		Scan(&f.ID, &f.PilotID, &monto, &litros, &fecha, &f.Status, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f.Amount = mustDecimal(monto)
	f.Liters = mustDecimal(litros)
	f.Date, _ = time.Parse(time.RFC3339, fecha)
	f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &f, nil
}

func (s *Store) SaveFuelLog(ctx context.Context, f *flightops.FuelLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveFuelLog(ctx, s.db, f)
}

func (t *txStore) SaveFuelLog(ctx context.Context, f *flightops.FuelLog) error {
	return saveFuelLog(ctx, t.q, f)
}

func saveFuelLog(ctx context.Context, q querier, f *flightops.FuelLog) error {
	if f.Status == "" {
		f.Status = flightops.FinancePendiente
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO fuel_logs (piloto_id, monto, litros, fecha, estado, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		f.PilotID, f.Amount.String(), f.Liters.String(),
		f.Date.UTC().Format(time.RFC3339), f.Status,
		f.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert fuel log: %w", err)
	}
	f.ID, err = res.LastInsertId()
	return err
}

func (s *Store) MarkFuelApproved(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return markEstado(ctx, s.db, "fuel_logs", id)
}

func (t *txStore) MarkFuelApproved(ctx context.Context, id int64) error {
	return markEstado(ctx, t.q, "fuel_logs", id)
}

func (s *Store) DeleteFuelLog(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM fuel_logs WHERE id = ?", id)
	return err
}

func (t *txStore) DeleteFuelLog(ctx context.Context, id int64) error {
	_, err := t.q.ExecContext(ctx, "DELETE FROM fuel_logs WHERE id = ?", id)
	return err
}

func markEstado(ctx context.Context, q querier, table string, id int64) error {
	_, err := q.ExecContext(ctx,
		"UPDATE "+table+" SET estado = ? WHERE id = ?",
		flightops.FinanceAprobado, id)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func nullDecimal(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}

func parseNullDecimal(s sql.NullString) decimal.NullDecimal {
	if !s.Valid || s.String == "" {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: mustDecimal(s.String), Valid: true}
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Compile-time interface checks.
var (
	_ flightops.TxStore = (*Store)(nil)
	_ flightops.Store   = (*txStore)(nil)
)
