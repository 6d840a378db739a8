package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"housefinder/models"
)

// EnquiryStore records every submission and its recommendation result in
// Postgres, mirroring the backend's enquiries/recommendations tables. The
// store is optional; when no database URL is configured the submission flow
// simply skips history.
type EnquiryStore struct {
	pool *pgxpool.Pool
}

func NewEnquiryStore(ctx context.Context, connString string) (*EnquiryStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &EnquiryStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

func (s *EnquiryStore) Close() {
	s.pool.Close()
}

func (s *EnquiryStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS enquiries (
		eid BIGSERIAL PRIMARY KEY,
		device_id TEXT,
		min_monthly_rent INTEGER,
		max_monthly_rent INTEGER,
		school_id INTEGER,
		target_district_id INTEGER,
		max_school_limit INTEGER,
		flat_type_preference TEXT[],
		max_mrt_distance INTEGER,
		importance_rent INTEGER,
		importance_location INTEGER,
		importance_facility INTEGER,
		requirement_description TEXT,
		create_time TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_enquiries_device ON enquiries(device_id, create_time);

	CREATE TABLE IF NOT EXISTS recommendations (
		rid BIGSERIAL PRIMARY KEY,
		eid BIGINT NOT NULL UNIQUE REFERENCES enquiries(eid),
		result JSONB,
		create_time TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// RecordForm stores a questionnaire submission together with its result.
func (s *EnquiryStore) RecordForm(ctx context.Context, prefs *models.FormPreferences, res *models.Recommendations) error {
	query := `
		INSERT INTO enquiries (
			device_id, min_monthly_rent, max_monthly_rent, school_id,
			target_district_id, max_school_limit, flat_type_preference,
			max_mrt_distance, importance_rent, importance_location, importance_facility
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING eid`

	var eid int64
	err := s.pool.QueryRow(ctx, query,
		prefs.DeviceID, prefs.MinMonthlyRent, prefs.MaxMonthlyRent, prefs.SchoolID,
		prefs.TargetDistrictID, prefs.MaxSchoolLimit, prefs.FlatTypePreference,
		prefs.MaxMRTDistance, prefs.ImportanceRent, prefs.ImportanceLocation, prefs.ImportanceFacility,
	).Scan(&eid)
	if err != nil {
		return fmt.Errorf("insert enquiry: %w", err)
	}

	return s.recordResult(ctx, eid, res)
}

// RecordDescription stores a free-text submission together with its result.
func (s *EnquiryStore) RecordDescription(ctx context.Context, enquiry *models.DescriptionEnquiry, res *models.Recommendations) error {
	query := `
		INSERT INTO enquiries (device_id, requirement_description)
		VALUES ($1, $2)
		RETURNING eid`

	var eid int64
	err := s.pool.QueryRow(ctx, query, enquiry.DeviceID, enquiry.RequirementDescription).Scan(&eid)
	if err != nil {
		return fmt.Errorf("insert enquiry: %w", err)
	}

	return s.recordResult(ctx, eid, res)
}

func (s *EnquiryStore) recordResult(ctx context.Context, eid int64, res *models.Recommendations) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO recommendations (eid, result) VALUES ($1, $2)`, eid, data)
	if err != nil {
		return fmt.Errorf("insert recommendation: %w", err)
	}
	return nil
}

// EnquiryRecord is one row of per-device history.
type EnquiryRecord struct {
	EID         int64
	Description string
	MinRent     int
	MaxRent     int
	SchoolID    int
	CreateTime  time.Time
	Result      *models.Recommendations
}

// RecentEnquiries returns the newest enquiries for a device, most recent
// first, with their recorded results when present.
func (s *EnquiryStore) RecentEnquiries(ctx context.Context, deviceID string, limit int) ([]EnquiryRecord, error) {
	query := `
		SELECT e.eid, COALESCE(e.requirement_description, ''),
			COALESCE(e.min_monthly_rent, 0), COALESCE(e.max_monthly_rent, 0),
			COALESCE(e.school_id, 0), e.create_time, r.result
		FROM enquiries e
		LEFT JOIN recommendations r ON r.eid = e.eid
		WHERE e.device_id = $1
		ORDER BY e.create_time DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, deviceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []EnquiryRecord
	for rows.Next() {
		var rec EnquiryRecord
		var result []byte
		if err := rows.Scan(&rec.EID, &rec.Description, &rec.MinRent, &rec.MaxRent,
			&rec.SchoolID, &rec.CreateTime, &result); err != nil {
			return nil, err
		}
		if result != nil {
			var res models.Recommendations
			if err := json.Unmarshal(result, &res); err == nil {
				rec.Result = &res
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
