// api/dao/resident_dao.go
package dao

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chittoorhealth/api/access"
	health_errors "github.com/chittoorhealth/api/errors"
	logger "github.com/chittoorhealth/api/logging"
	"github.com/chittoorhealth/api/model"
)

const residentTable = "residents"

var residentColumns = []string{
	"id", "aadhaar_last4", "name", "age", "gender", "mandal", "secretariat",
	"village", "phone", "health_flags", "last_surveyed_at", "created_at", "updated_at",
}

// ResidentDAO reads and writes resident records in MySQL. Every bulk read
// takes an access.Scope and attaches it to the query before execution; no
// caller gets to skip it.
type ResidentDAO struct {
	DB *sql.DB
}

func NewResidentDAO(db *sql.DB) *ResidentDAO {
	return &ResidentDAO{DB: db}
}

func (dao *ResidentDAO) CreateResident(ctx context.Context, resident model.Resident) (string, error) {
	if resident.ID == "" {
		resident.ID = uuid.New().String()
	}
	now := time.Now()

	query, args, err := sq.Insert(residentTable).
		Columns(residentColumns...).
		Values(
			resident.ID,
			resident.AadhaarLast4,
			resident.Name,
			resident.Age,
			resident.Gender,
			resident.Mandal,
			resident.Secretariat,
			resident.Village,
			resident.Phone,
			strings.Join(resident.HealthFlags, ";"),
			nullableTime(resident.LastSurveyedAt),
			now,
			now,
		).
		ToSql()
	if err != nil {
		return "", health_errors.ErrInternalServer
	}

	if _, err := dao.DB.ExecContext(ctx, query, args...); err != nil {
		logger.Error("Failed to create resident", zap.Error(err), zap.String("residentID", resident.ID))
		return "", health_errors.ErrDatabaseOperation
	}

	logger.Info("Resident created", zap.String("residentID", resident.ID))
	return resident.ID, nil
}

func (dao *ResidentDAO) UpdateResident(ctx context.Context, resident model.Resident) (*model.Resident, error) {
	query, args, err := sq.Update(residentTable).
		Set("name", resident.Name).
		Set("age", resident.Age).
		Set("gender", resident.Gender).
		Set("mandal", resident.Mandal).
		Set("secretariat", resident.Secretariat).
		Set("village", resident.Village).
		Set("phone", resident.Phone).
		Set("health_flags", strings.Join(resident.HealthFlags, ";")).
		Set("last_surveyed_at", nullableTime(resident.LastSurveyedAt)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": resident.ID}).
		ToSql()
	if err != nil {
		return nil, health_errors.ErrInternalServer
	}

	result, err := dao.DB.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error("Failed to update resident", zap.Error(err), zap.String("residentID", resident.ID))
		return nil, health_errors.ErrDatabaseOperation
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, health_errors.ErrDatabaseOperation
	}
	if affected == 0 {
		return nil, health_errors.ErrResidentNotFound
	}

	return dao.GetResident(ctx, resident.ID)
}

func (dao *ResidentDAO) DeleteResident(ctx context.Context, residentID string) error {
	query, args, err := sq.Delete(residentTable).Where(sq.Eq{"id": residentID}).ToSql()
	if err != nil {
		return health_errors.ErrInternalServer
	}

	result, err := dao.DB.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error("Failed to delete resident", zap.Error(err), zap.String("residentID", residentID))
		return health_errors.ErrDatabaseOperation
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return health_errors.ErrDatabaseOperation
	}
	if affected == 0 {
		return health_errors.ErrResidentNotFound
	}

	logger.Info("Resident deleted", zap.String("residentID", residentID))
	return nil
}

func (dao *ResidentDAO) GetResident(ctx context.Context, residentID string) (*model.Resident, error) {
	query, args, err := sq.Select(residentColumns...).
		From(residentTable).
		Where(sq.Eq{"id": residentID}).
		ToSql()
	if err != nil {
		return nil, health_errors.ErrInternalServer
	}

	row := dao.DB.QueryRowContext(ctx, query, args...)
	resident, err := scanResident(row)
	if err == sql.ErrNoRows {
		return nil, health_errors.ErrResidentNotFound
	}
	if err != nil {
		logger.Error("Failed to get resident", zap.Error(err), zap.String("residentID", residentID))
		return nil, health_errors.ErrDatabaseOperation
	}
	return resident, nil
}

// ListResidentsPage returns one page of residents visible under scope,
// ordered by id so export pagination is stable.
func (dao *ResidentDAO) ListResidentsPage(ctx context.Context, scope access.Scope, limit, offset int) ([]*model.Resident, error) {
	query, args, err := sq.Select(residentColumns...).
		From(residentTable).
		Where(scope).
		OrderBy("id").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, health_errors.ErrInternalServer
	}

	return dao.queryResidents(ctx, query, args)
}

// SearchResidents filters by criteria on top of the caller's scope.
func (dao *ResidentDAO) SearchResidents(ctx context.Context, scope access.Scope, criteria model.ResidentSearchCriteria) ([]*model.Resident, error) {
	qb := sq.Select(residentColumns...).
		From(residentTable).
		Where(scope)

	if criteria.Name != "" {
		qb = qb.Where(sq.Like{"name": "%" + criteria.Name + "%"})
	}
	if criteria.Mandal != "" {
		qb = qb.Where(sq.Eq{"mandal": criteria.Mandal})
	}
	if criteria.Secretariat != "" {
		qb = qb.Where(sq.Eq{"secretariat": criteria.Secretariat})
	}
	if criteria.Gender != "" {
		qb = qb.Where(sq.Eq{"gender": criteria.Gender})
	}
	if criteria.MinAge > 0 {
		qb = qb.Where(sq.GtOrEq{"age": criteria.MinAge})
	}
	if criteria.MaxAge > 0 {
		qb = qb.Where(sq.LtOrEq{"age": criteria.MaxAge})
	}

	limit := criteria.Limit
	if limit <= 0 {
		limit = 50
	}
	qb = qb.OrderBy("name").Limit(uint64(limit)).Offset(uint64(criteria.Offset))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, health_errors.ErrInternalServer
	}
	return dao.queryResidents(ctx, query, args)
}

// CountResidents counts the records visible under scope.
func (dao *ResidentDAO) CountResidents(ctx context.Context, scope access.Scope) (int, error) {
	query, args, err := sq.Select("COUNT(*)").
		From(residentTable).
		Where(scope).
		ToSql()
	if err != nil {
		return 0, health_errors.ErrInternalServer
	}

	var count int
	if err := dao.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		logger.Error("Failed to count residents", zap.Error(err))
		return 0, health_errors.ErrDatabaseOperation
	}
	return count, nil
}

// CountByMandal returns grouped resident counts per mandal under scope.
func (dao *ResidentDAO) CountByMandal(ctx context.Context, scope access.Scope) ([]model.MandalCount, error) {
	query, args, err := sq.Select("mandal", "COUNT(*)").
		From(residentTable).
		Where(scope).
		GroupBy("mandal").
		OrderBy("mandal").
		ToSql()
	if err != nil {
		return nil, health_errors.ErrInternalServer
	}

	rows, err := dao.DB.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("Failed to count residents by mandal", zap.Error(err))
		return nil, health_errors.ErrDatabaseOperation
	}
	defer rows.Close()

	var counts []model.MandalCount
	for rows.Next() {
		var c model.MandalCount
		if err := rows.Scan(&c.Mandal, &c.Count); err != nil {
			return nil, health_errors.ErrDatabaseOperation
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// CountBySecretariat returns grouped counts per (mandal, secretariat) under
// scope, optionally narrowed to one mandal.
func (dao *ResidentDAO) CountBySecretariat(ctx context.Context, scope access.Scope, mandal string) ([]model.SecretariatCount, error) {
	qb := sq.Select("mandal", "secretariat", "COUNT(*)").
		From(residentTable).
		Where(scope)
	if mandal != "" {
		qb = qb.Where(sq.Eq{"mandal": mandal})
	}
	query, args, err := qb.GroupBy("mandal", "secretariat").
		OrderBy("mandal", "secretariat").
		ToSql()
	if err != nil {
		return nil, health_errors.ErrInternalServer
	}

	rows, err := dao.DB.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("Failed to count residents by secretariat", zap.Error(err))
		return nil, health_errors.ErrDatabaseOperation
	}
	defer rows.Close()

	var counts []model.SecretariatCount
	for rows.Next() {
		var c model.SecretariatCount
		if err := rows.Scan(&c.Mandal, &c.Secretariat, &c.Count); err != nil {
			return nil, health_errors.ErrDatabaseOperation
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (dao *ResidentDAO) queryResidents(ctx context.Context, query string, args []interface{}) ([]*model.Resident, error) {
	rows, err := dao.DB.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("Failed to query residents", zap.Error(err))
		return nil, health_errors.ErrDatabaseOperation
	}
	defer rows.Close()

	var residents []*model.Resident
	for rows.Next() {
		resident, err := scanResident(rows)
		if err != nil {
			return nil, health_errors.ErrDatabaseOperation
		}
		residents = append(residents, resident)
	}
	return residents, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanResident(row rowScanner) (*model.Resident, error) {
	var (
		r           model.Resident
		healthFlags string
		surveyedAt  sql.NullTime
	)
	err := row.Scan(
		&r.ID,
		&r.AadhaarLast4,
		&r.Name,
		&r.Age,
		&r.Gender,
		&r.Mandal,
		&r.Secretariat,
		&r.Village,
		&r.Phone,
		&healthFlags,
		&surveyedAt,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if healthFlags != "" {
		r.HealthFlags = strings.Split(healthFlags, ";")
	}
	if surveyedAt.Valid {
		r.LastSurveyedAt = surveyedAt.Time
	}
	return &r, nil
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
