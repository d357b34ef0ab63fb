package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"StressWatch/internal/domain/models"
	domrepo "StressWatch/internal/domain/repository"
)

// ClickHouseResultStore implements ResultStore on ClickHouse. Engine outputs
// are append-only; the presentation layer reads them straight from these
// tables.
type ClickHouseResultStore struct {
	db       *sql.DB
	database string
}

func NewClickHouseResultStore(db *sql.DB, database string) domrepo.ResultStore {
	return &ClickHouseResultStore{db: db, database: database}
}

// Init ensures the result tables exist (idempotent).
func (s *ClickHouseResultStore) Init(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.observations (
			ts DateTime64(3, 'UTC'),
			indicator LowCardinality(String),
			raw_value Float64,
			standard_score Float64,
			normalized_value Float64,
			score Float64,
			state LowCardinality(String)
		) ENGINE = MergeTree() ORDER BY (indicator, ts)`, s.database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.composites (
			ts DateTime64(3, 'UTC'),
			composite LowCardinality(String),
			score Float64,
			state LowCardinality(String),
			contributions String
		) ENGINE = MergeTree() ORDER BY (composite, ts)`, s.database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.strain_snapshots (
			ts DateTime64(3, 'UTC'),
			primary_roc Float64,
			secondary_roc Float64,
			tertiary_roc Float64,
			divergence Float64,
			outperformance Float64,
			market_direction Float64,
			direction_state LowCardinality(String),
			confirmation_state LowCardinality(String),
			strain_score Float64,
			strain_level LowCardinality(String),
			signal_strength LowCardinality(String)
		) ENGINE = MergeTree() ORDER BY ts`, s.database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.alerts (
			id String,
			ts DateTime64(3, 'UTC'),
			type LowCardinality(String),
			message String,
			affected Array(String),
			dedup_key String
		) ENGINE = MergeTree() ORDER BY ts`, s.database),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init result tables: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseResultStore) SaveObservations(ctx context.Context, obs []models.NormalizedObservation) error {
	if len(obs) == 0 {
		return nil
	}
	values := make([]string, 0, len(obs))
	args := make([]interface{}, 0, len(obs)*7)
	for _, o := range obs {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			o.Timestamp,
			o.IndicatorCode,
			o.RawValue,
			o.StandardScore,
			o.NormalizedValue,
			o.Score,
			string(o.State),
		)
	}
	q := fmt.Sprintf("INSERT INTO %s.observations (ts, indicator, raw_value, standard_score, normalized_value, score, state) VALUES %s",
		s.database, strings.Join(values, ","))
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

func (s *ClickHouseResultStore) SaveComposite(ctx context.Context, co models.CompositeObservation) error {
	contribs, err := json.Marshal(co.Contributions)
	if err != nil {
		return fmt.Errorf("marshal contributions: %w", err)
	}
	q := fmt.Sprintf("INSERT INTO %s.composites (ts, composite, score, state, contributions) VALUES (?, ?, ?, ?, ?)", s.database)
	_, err = s.db.ExecContext(ctx, q, co.Timestamp, co.Code, co.Score, string(co.State), string(contribs))
	return err
}

func (s *ClickHouseResultStore) SaveStrain(ctx context.Context, snap models.StrainSnapshot) error {
	q := fmt.Sprintf(`INSERT INTO %s.strain_snapshots
		(ts, primary_roc, secondary_roc, tertiary_roc, divergence, outperformance,
		 market_direction, direction_state, confirmation_state, strain_score, strain_level, signal_strength)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.database)
	_, err := s.db.ExecContext(ctx, q,
		snap.Timestamp,
		snap.PrimaryROC,
		snap.SecondaryROC,
		snap.TertiaryROC,
		snap.Divergence,
		snap.Outperformance,
		snap.MarketDirection,
		string(snap.DirectionState),
		string(snap.ConfirmationState),
		snap.StrainScore,
		string(snap.StrainLevel),
		string(snap.SignalStrength),
	)
	return err
}

func (s *ClickHouseResultStore) SaveAlert(ctx context.Context, a models.Alert) error {
	q := fmt.Sprintf("INSERT INTO %s.alerts (id, ts, type, message, affected, dedup_key) VALUES (?, ?, ?, ?, ?, ?)", s.database)
	_, err := s.db.ExecContext(ctx, q, a.ID, a.Timestamp, a.Type, a.Message, a.AffectedIndicators, a.DedupKey)
	return err
}

func (s *ClickHouseResultStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseResultStore) Close() error {
	return nil // pool owned by pkg/clickhouse
}
