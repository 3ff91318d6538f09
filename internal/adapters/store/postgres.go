package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/hospitalcostsearch/internal/domain/entities"
	"github.com/zatekoja/hospitalcostsearch/internal/domain/repositories"
	"github.com/zatekoja/hospitalcostsearch/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/hospitalcostsearch/pkg/errors"
)

const (
	profilesTable    = "user_profiles"
	eligibilityTable = "eligibility_records"
)

//go:embed schema.sql
var schemaSQL string

// PostgresProfileStore keeps profiles in user_profiles and eligibility
// records as JSONB in eligibility_records.
type PostgresProfileStore struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.ProfileRepository = (*PostgresProfileStore)(nil)

// NewPostgresProfileStore creates a new postgres store
func NewPostgresProfileStore(client *postgres.Client) *PostgresProfileStore {
	return &PostgresProfileStore{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// EnsureSchema creates the store's tables if they do not exist
func (s *PostgresProfileStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.client.DB().ExecContext(ctx, schemaSQL); err != nil {
		return apperrors.NewInternalError("failed to create profile store schema", err)
	}
	return nil
}

func (s *PostgresProfileStore) GetProfile(ctx context.Context, userID string) (*entities.UserProfile, error) {
	query, args, err := s.db.From(profilesTable).Prepared(true).
		Select("user_id", "first_name", "last_name", "member_id", "insurance_provider", "updated_at").
		Where(goqu.Ex{"user_id": userID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	profile := &entities.UserProfile{}
	err = s.client.DBX().GetContext(ctx, profile, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("profile for user %s not found", userID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get profile", err)
	}
	return profile, nil
}

func (s *PostgresProfileStore) GetEligibility(ctx context.Context, userID string) (*entities.EligibilityRecord, error) {
	query, args, err := s.db.From(eligibilityTable).Prepared(true).
		Select("payload", "updated_at").
		Where(goqu.Ex{"user_id": userID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var payload []byte
	var updatedAt time.Time
	err = s.client.DB().QueryRowContext(ctx, query, args...).Scan(&payload, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("eligibility for user %s not found", userID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get eligibility", err)
	}

	record := &entities.EligibilityRecord{}
	if err := json.Unmarshal(payload, record); err != nil {
		return nil, apperrors.NewDecodeError("corrupt eligibility payload for user "+userID, err)
	}
	record.UserID = userID
	record.UpdatedAt = updatedAt
	return record, nil
}

func (s *PostgresProfileStore) SaveProfile(ctx context.Context, profile *entities.UserProfile) error {
	if profile == nil || profile.UserID == "" {
		return apperrors.NewValidationError("profile user id is required")
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = time.Now().UTC()
	}

	record := goqu.Record{
		"user_id":            profile.UserID,
		"first_name":         profile.FirstName,
		"last_name":          profile.LastName,
		"member_id":          profile.MemberID,
		"insurance_provider": profile.InsuranceProvider,
		"updated_at":         profile.UpdatedAt,
	}
	query, args, err := s.db.Insert(profilesTable).Prepared(true).
		Rows(record).
		OnConflict(goqu.DoUpdate("user_id", goqu.Record{
			"first_name":         goqu.I("excluded.first_name"),
			"last_name":          goqu.I("excluded.last_name"),
			"member_id":          goqu.I("excluded.member_id"),
			"insurance_provider": goqu.I("excluded.insurance_provider"),
			"updated_at":         goqu.I("excluded.updated_at"),
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := s.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to save profile", err)
	}
	return nil
}

func (s *PostgresProfileStore) SaveEligibility(ctx context.Context, userID string, record *entities.EligibilityRecord) error {
	if userID == "" || record == nil {
		return apperrors.NewValidationError("eligibility user id and record are required")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return apperrors.NewInternalError("failed to encode eligibility record", err)
	}
	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	query, args, err := s.db.Insert(eligibilityTable).Prepared(true).
		Rows(goqu.Record{
			"user_id":    userID,
			"payload":    string(payload),
			"updated_at": updatedAt,
		}).
		OnConflict(goqu.DoUpdate("user_id", goqu.Record{
			"payload":    goqu.I("excluded.payload"),
			"updated_at": goqu.I("excluded.updated_at"),
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := s.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to save eligibility", err)
	}
	return nil
}
