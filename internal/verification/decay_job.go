package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborline/sms-backend/internal/cron"
	"github.com/harborline/sms-backend/pkg/db/models"
	"github.com/harborline/sms-backend/pkg/enums"
	"github.com/harborline/sms-backend/pkg/logger"
)

// DecayJobParams configures the nightly quality degradation job.
type DecayJobParams struct {
	Logger                 *logger.Logger
	DB                     txRunner
	EquipmentRepo          overdueEquipmentStore
	VerificationRepo       auditWriter
	Schedule               cron.Schedule
	DefaultDegradationRate int
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type overdueEquipmentStore interface {
	ListOverdue(ctx context.Context, now time.Time) ([]models.Equipment, error)
	UpdateQualityScoreWithTx(tx *gorm.DB, id uuid.UUID, score int) error
}

type auditWriter interface {
	CreateQualityScoreRecordWithTx(tx *gorm.DB, record *models.QualityScoreRecord) error
}

// NewDecayJob constructs the degradation cron job.
func NewDecayJob(params DecayJobParams) (cron.Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.EquipmentRepo == nil {
		return nil, fmt.Errorf("equipment repository required")
	}
	if params.VerificationRepo == nil {
		return nil, fmt.Errorf("verification repository required")
	}
	if err := params.Schedule.Validate(); err != nil {
		return nil, err
	}
	if params.DefaultDegradationRate <= 0 {
		params.DefaultDegradationRate = DefaultDegradationRate
	}
	return &decayJob{
		logg:        params.Logger,
		db:          params.DB,
		equipment:   params.EquipmentRepo,
		audit:       params.VerificationRepo,
		schedule:    params.Schedule,
		defaultRate: params.DefaultDegradationRate,
		now:         time.Now,
	}, nil
}

type decayJob struct {
	logg        *logger.Logger
	db          txRunner
	equipment   overdueEquipmentStore
	audit       auditWriter
	schedule    cron.Schedule
	defaultRate int
	now         func() time.Time
}

func (j *decayJob) Name() string { return JobNameDegradation }

func (j *decayJob) Spec() cron.Schedule { return j.schedule }

func (j *decayJob) Run(ctx context.Context) error {
	now := j.now().UTC()

	overdue, err := j.equipment.ListOverdue(ctx, now)
	if err != nil {
		return fmt.Errorf("query overdue equipment: %w", err)
	}

	degraded, failed := 0, 0
	for _, eq := range overdue {
		eqCtx := j.logg.WithEquipmentID(ctx, eq.ID.String())
		changed, err := j.degradeEquipment(eqCtx, eq, now)
		if err != nil {
			j.logg.Error(eqCtx, "quality degradation failed", err)
			failed++
			continue
		}
		if changed {
			degraded++
		}
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"equipment_overdue":  len(overdue),
		"equipment_degraded": degraded,
		"equipment_failed":   failed,
	}), "quality degradation sweep complete")
	return nil
}

// degradationDetails is the audit payload recorded alongside each decayed
// score.
type degradationDetails struct {
	Reason          string `json:"reason"`
	DaysOverdue     int    `json:"daysOverdue"`
	DegradationRate int    `json:"degradationRate"`
	PreviousScore   int    `json:"previousScore"`
}

func (j *decayJob) degradeEquipment(ctx context.Context, eq models.Equipment, now time.Time) (bool, error) {
	if eq.NextVerificationDate == nil || eq.QualityScore <= 0 {
		return false, nil
	}

	daysOverdue := WholeDaysBetween(eq.NextVerificationDate.UTC(), now)
	if daysOverdue <= 0 {
		return false, nil
	}

	rate := j.defaultRate
	if eq.DataQualityDegradationRate != nil {
		rate = *eq.DataQualityDegradationRate
	}

	newScore := DecayedScore(eq.QualityScore, rate, daysOverdue)
	if newScore == eq.QualityScore {
		return false, nil
	}

	details, err := json.Marshal(degradationDetails{
		Reason:          "Automatic degradation due to overdue verification",
		DaysOverdue:     daysOverdue,
		DegradationRate: rate,
		PreviousScore:   eq.QualityScore,
	})
	if err != nil {
		return false, fmt.Errorf("marshal degradation details: %w", err)
	}

	err = j.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := j.equipment.UpdateQualityScoreWithTx(tx, eq.ID, newScore); err != nil {
			return fmt.Errorf("update quality score: %w", err)
		}
		record := &models.QualityScoreRecord{
			EquipmentID: eq.ID,
			Metric:      enums.QualityMetricAccuracy,
			Score:       newScore,
			Details:     details,
		}
		if err := j.audit.CreateQualityScoreRecordWithTx(tx, record); err != nil {
			return fmt.Errorf("record degradation: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
