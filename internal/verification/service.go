package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborline/sms-backend/internal/equipment"
	"github.com/harborline/sms-backend/internal/notifications"
	"github.com/harborline/sms-backend/pkg/db/models"
	"github.com/harborline/sms-backend/pkg/enums"
	pkgerrors "github.com/harborline/sms-backend/pkg/errors"
	"github.com/harborline/sms-backend/pkg/pagination"
)

type equipmentStore interface {
	FindForCompany(ctx context.Context, id, companyID uuid.UUID) (*models.Equipment, error)
	UpdateSchedule(ctx context.Context, id uuid.UUID, update equipment.ScheduleUpdate) error
	ApplyVerification(ctx context.Context, tx *gorm.DB, id uuid.UUID, update equipment.VerificationUpdate) error
	ListDueForCompany(ctx context.Context, filter equipment.ListFilter, before time.Time, overdueOnly bool, now time.Time) ([]models.Equipment, error)
	CountScheduled(ctx context.Context, filter equipment.ListFilter) (int64, error)
	CountOverdue(ctx context.Context, filter equipment.ListFilter, now time.Time) (int64, error)
	CountDueBetween(ctx context.Context, filter equipment.ListFilter, from, to time.Time) (int64, error)
	AverageQualityScore(ctx context.Context, filter equipment.ListFilter) (float64, error)
}

type verificationStore interface {
	CreateVerificationWithTx(tx *gorm.DB, verification *models.EquipmentVerification) error
	CreateQualityScoreRecordWithTx(tx *gorm.DB, record *models.QualityScoreRecord) error
	ListHistory(ctx context.Context, filter equipment.ListFilter, equipmentID *uuid.UUID, limit, offset int) ([]models.EquipmentVerification, int64, error)
	CountVerificationsSince(ctx context.Context, filter equipment.ListFilter, since time.Time) (int64, error)
}

type reminderStore interface {
	ListVerificationNotifications(ctx context.Context, userID uuid.UUID, unacknowledgedOnly bool) ([]models.VerificationNotification, error)
	Acknowledge(ctx context.Context, notificationID, userID uuid.UUID, now time.Time) (notifications.AcknowledgeResult, error)
}

type userStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service exposes the verification workflow: schedule configuration,
// completed verifications, due listings, reminder acknowledgement, and
// dashboard statistics.
type Service interface {
	SetSchedule(ctx context.Context, input SetScheduleInput) (*models.Equipment, error)
	Perform(ctx context.Context, input PerformInput) (*models.EquipmentVerification, error)
	ListDue(ctx context.Context, input ListDueInput) ([]DueEquipment, error)
	ListNotifications(ctx context.Context, input ListNotificationsInput) ([]models.VerificationNotification, error)
	Acknowledge(ctx context.Context, input AcknowledgeInput) error
	ListHistory(ctx context.Context, input ListHistoryInput) (*HistoryPage, error)
	DashboardStats(ctx context.Context, input StatsInput) (*DashboardStats, error)
}

// ServiceParams wires the verification service dependencies.
type ServiceParams struct {
	DB                     txRunner
	EquipmentRepo          equipmentStore
	VerificationRepo       verificationStore
	NotificationRepo       reminderStore
	UserRepo               userStore
	LookaheadDays          int
	CriticalOverdueDays    int
	DefaultDegradationRate int
	DefaultIntervalDays    int
}

type service struct {
	db              txRunner
	equipment       equipmentStore
	repo            verificationStore
	reminders       reminderStore
	users           userStore
	validate        *validator.Validate
	lookahead       int
	critical        int
	defaultRate     int
	defaultInterval int
	now             func() time.Time
}

// DefaultIntervalDays is the policy verification cycle applied when a
// schedule is configured without an explicit interval.
const DefaultIntervalDays = 90

// NewService builds the verification service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.EquipmentRepo == nil {
		return nil, fmt.Errorf("equipment repository required")
	}
	if params.VerificationRepo == nil {
		return nil, fmt.Errorf("verification repository required")
	}
	if params.NotificationRepo == nil {
		return nil, fmt.Errorf("notification repository required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if params.LookaheadDays <= 0 {
		params.LookaheadDays = DefaultLookaheadDays
	}
	if params.CriticalOverdueDays <= 0 {
		params.CriticalOverdueDays = DefaultCriticalOverdueDays
	}
	if params.DefaultDegradationRate <= 0 {
		params.DefaultDegradationRate = DefaultDegradationRate
	}
	if params.DefaultIntervalDays <= 0 {
		params.DefaultIntervalDays = DefaultIntervalDays
	}
	return &service{
		db:              params.DB,
		equipment:       params.EquipmentRepo,
		repo:            params.VerificationRepo,
		reminders:       params.NotificationRepo,
		users:           params.UserRepo,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		lookahead:       params.LookaheadDays,
		critical:        params.CriticalOverdueDays,
		defaultRate:     params.DefaultDegradationRate,
		defaultInterval: params.DefaultIntervalDays,
		now:             time.Now,
	}, nil
}

func (s *service) loadActor(ctx context.Context, actorID uuid.UUID) (*models.User, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load actor")
	}
	if !actor.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "inactive account")
	}
	return actor, nil
}

func (s *service) loadEquipment(ctx context.Context, equipmentID, companyID uuid.UUID) (*models.Equipment, error) {
	eq, err := s.equipment.FindForCompany(ctx, equipmentID, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load equipment")
	}
	return eq, nil
}

func (s *service) SetSchedule(ctx context.Context, input SetScheduleInput) (*models.Equipment, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid schedule input")
	}
	actor, err := s.loadActor(ctx, input.ActorID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsDecisionMaker() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot configure verification schedules")
	}
	eq, err := s.loadEquipment(ctx, input.EquipmentID, actor.CompanyID)
	if err != nil {
		return nil, err
	}

	interval := input.IntervalDays
	if interval == 0 {
		interval = s.defaultInterval
	}

	// The first cycle is anchored on the last completed verification when one
	// exists, otherwise on now.
	anchor := s.now().UTC()
	if eq.LastVerifiedAt != nil {
		anchor = eq.LastVerifiedAt.UTC()
	}
	next := anchor.Add(time.Duration(interval) * day)

	update := equipment.ScheduleUpdate{
		IntervalDays:         interval,
		DegradationRate:      input.DegradationRate,
		NextVerificationDate: next,
	}
	if err := s.equipment.UpdateSchedule(ctx, eq.ID, update); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update schedule")
	}

	eq.VerificationIntervalDays = &interval
	eq.NextVerificationDate = &next
	if input.DegradationRate != nil {
		eq.DataQualityDegradationRate = input.DegradationRate
	}
	return eq, nil
}

func (s *service) Perform(ctx context.Context, input PerformInput) (*models.EquipmentVerification, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid verification input")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown verification type")
	}
	actor, err := s.loadActor(ctx, input.ActorID)
	if err != nil {
		return nil, err
	}
	eq, err := s.loadEquipment(ctx, input.EquipmentID, actor.CompanyID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var next *time.Time
	if eq.VerificationIntervalDays != nil {
		n := now.Add(time.Duration(*eq.VerificationIntervalDays) * day)
		next = &n
	}

	verification := &models.EquipmentVerification{
		EquipmentID:          eq.ID,
		VerifiedBy:           actor.ID,
		VerificationType:     input.Type,
		QualityScoreBefore:   eq.QualityScore,
		QualityScoreAfter:    input.QualityScore,
		Findings:             input.Findings,
		CorrectiveActions:    input.CorrectiveActions,
		NextVerificationDate: next,
		VerificationDate:     now,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateVerificationWithTx(tx, verification); err != nil {
			return fmt.Errorf("create verification: %w", err)
		}
		update := equipment.VerificationUpdate{
			VerifiedAt:           now,
			VerifiedBy:           actor.ID,
			QualityScore:         input.QualityScore,
			NextVerificationDate: next,
			Notes:                input.Findings,
		}
		if err := s.equipment.ApplyVerification(ctx, tx, eq.ID, update); err != nil {
			return fmt.Errorf("apply verification: %w", err)
		}
		details, err := json.Marshal(map[string]any{
			"reason":           "Score reset by completed verification",
			"verificationId":   verification.ID,
			"verificationType": input.Type,
			"previousScore":    eq.QualityScore,
		})
		if err != nil {
			return fmt.Errorf("marshal verification details: %w", err)
		}
		record := &models.QualityScoreRecord{
			EquipmentID: eq.ID,
			Metric:      enums.QualityMetricAccuracy,
			Score:       input.QualityScore,
			EvaluatedBy: &actor.ID,
			Details:     details,
		}
		if err := s.repo.CreateQualityScoreRecordWithTx(tx, record); err != nil {
			return fmt.Errorf("record verification score: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist verification")
	}
	return verification, nil
}

func (s *service) ListDue(ctx context.Context, input ListDueInput) ([]DueEquipment, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing input")
	}
	actor, err := s.loadActor(ctx, input.ActorID)
	if err != nil {
		return nil, err
	}

	daysAhead := input.DaysAhead
	if daysAhead == 0 {
		daysAhead = s.lookahead
	}
	now := s.now().UTC()
	before := now.Add(time.Duration(daysAhead) * day)
	filter := equipment.ListFilter{CompanyID: actor.CompanyID, VesselID: input.VesselID}

	rows, err := s.equipment.ListDueForCompany(ctx, filter, before, input.OverdueOnly, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list due equipment")
	}

	due := make([]DueEquipment, 0, len(rows))
	for _, eq := range rows {
		entry := DueEquipment{
			Equipment:             eq,
			EffectiveQualityScore: eq.QualityScore,
		}
		if eq.NextVerificationDate != nil {
			entry.DaysUntilDue = WholeDaysBetween(now, eq.NextVerificationDate.UTC())
			if entry.DaysUntilDue < 0 {
				rate := s.defaultRate
				if eq.DataQualityDegradationRate != nil {
					rate = *eq.DataQualityDegradationRate
				}
				entry.EffectiveQualityScore = DecayedScore(eq.QualityScore, rate, -entry.DaysUntilDue)
			}
		}
		due = append(due, entry)
	}
	return due, nil
}

func (s *service) ListNotifications(ctx context.Context, input ListNotificationsInput) ([]models.VerificationNotification, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing input")
	}
	if _, err := s.loadActor(ctx, input.ActorID); err != nil {
		return nil, err
	}
	rows, err := s.reminders.ListVerificationNotifications(ctx, input.ActorID, input.UnacknowledgedOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reminders")
	}
	return rows, nil
}

func (s *service) Acknowledge(ctx context.Context, input AcknowledgeInput) error {
	if err := s.validate.Struct(input); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid acknowledge input")
	}
	if _, err := s.loadActor(ctx, input.ActorID); err != nil {
		return err
	}
	result, err := s.reminders.Acknowledge(ctx, input.NotificationID, input.ActorID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acknowledge reminder")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "reminder not found")
	}
	if !result.Updated {
		return pkgerrors.New(pkgerrors.CodeConflict, "reminder already acknowledged")
	}
	return nil
}

func (s *service) ListHistory(ctx context.Context, input ListHistoryInput) (*HistoryPage, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid history input")
	}
	actor, err := s.loadActor(ctx, input.ActorID)
	if err != nil {
		return nil, err
	}
	page := pagination.Params{Limit: input.Limit, Offset: input.Offset}.Normalize()
	filter := equipment.ListFilter{CompanyID: actor.CompanyID, VesselID: input.VesselID}
	items, total, err := s.repo.ListHistory(ctx, filter, input.EquipmentID, page.Limit, page.Offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list verification history")
	}
	return &HistoryPage{Items: items, Total: total}, nil
}

func (s *service) DashboardStats(ctx context.Context, input StatsInput) (*DashboardStats, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stats input")
	}
	actor, err := s.loadActor(ctx, input.ActorID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	filter := equipment.ListFilter{CompanyID: actor.CompanyID, VesselID: input.VesselID}
	stats := &DashboardStats{}

	if stats.ScheduledEquipment, err = s.equipment.CountScheduled(ctx, filter); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count scheduled equipment")
	}
	if stats.OverdueEquipment, err = s.equipment.CountOverdue(ctx, filter, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count overdue equipment")
	}
	lookaheadEnd := now.Add(time.Duration(s.lookahead) * day)
	if stats.DueWithinLookahead, err = s.equipment.CountDueBetween(ctx, filter, now, lookaheadEnd); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count upcoming equipment")
	}
	if stats.AverageQualityScore, err = s.equipment.AverageQualityScore(ctx, filter); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "average quality score")
	}
	since := now.Add(-30 * day)
	if stats.VerificationsLast30Days, err = s.repo.CountVerificationsSince(ctx, filter, since); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count recent verifications")
	}
	return stats, nil
}
