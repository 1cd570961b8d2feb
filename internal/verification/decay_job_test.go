package verification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborline/sms-backend/internal/cron"
	"github.com/harborline/sms-backend/pkg/db/models"
	"github.com/harborline/sms-backend/pkg/enums"
	"github.com/harborline/sms-backend/pkg/logger"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeOverdueStore struct {
	rows    []models.Equipment
	listErr error

	updates map[uuid.UUID]int
	updErr  error
}

func (f *fakeOverdueStore) ListOverdue(_ context.Context, _ time.Time) ([]models.Equipment, error) {
	return f.rows, f.listErr
}

func (f *fakeOverdueStore) UpdateQualityScoreWithTx(_ *gorm.DB, id uuid.UUID, score int) error {
	if f.updErr != nil {
		return f.updErr
	}
	if f.updates == nil {
		f.updates = map[uuid.UUID]int{}
	}
	f.updates[id] = score
	return nil
}

type fakeAuditSink struct {
	records []*models.QualityScoreRecord
	err     error
}

func (f *fakeAuditSink) CreateQualityScoreRecordWithTx(_ *gorm.DB, record *models.QualityScoreRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	return nil
}

type decayJobHelper struct {
	job   *decayJob
	store *fakeOverdueStore
	audit *fakeAuditSink
}

func createDecayJobTest(t *testing.T) *decayJobHelper {
	t.Helper()
	store := &fakeOverdueStore{}
	audit := &fakeAuditSink{}
	jobIface, err := NewDecayJob(DecayJobParams{
		Logger:           logger.New(logger.Options{ServiceName: "test"}),
		DB:               fakeTxRunner{},
		EquipmentRepo:    store,
		VerificationRepo: audit,
		Schedule:         cron.Schedule{Hour: 2},
	})
	if err != nil {
		t.Fatalf("NewDecayJob: %v", err)
	}
	job, ok := jobIface.(*decayJob)
	if !ok {
		t.Fatalf("expected decayJob, got %T", jobIface)
	}
	return &decayJobHelper{job: job, store: store, audit: audit}
}

func overdueEquipmentRow(score, daysOverdue int, rate *int, now time.Time) models.Equipment {
	next := now.Add(-time.Duration(daysOverdue) * 24 * time.Hour)
	return models.Equipment{
		ID:                         uuid.New(),
		VesselID:                   uuid.New(),
		Name:                       "Ballast Water Sensor",
		QualityScore:               score,
		NextVerificationDate:       &next,
		DataQualityDegradationRate: rate,
	}
}

func TestDecayJobDegradesOverdueEquipment(t *testing.T) {
	helper := createDecayJobTest(t)
	now := time.Date(2026, 4, 1, 2, 0, 0, 0, time.UTC)
	helper.job.now = func() time.Time { return now }

	eq := overdueEquipmentRow(100, 30, nil, now)
	helper.store.rows = []models.Equipment{eq}

	if err := helper.job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := helper.store.updates[eq.ID]; got != 95 {
		t.Fatalf("expected score 95, got %d", got)
	}
	if len(helper.audit.records) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(helper.audit.records))
	}

	record := helper.audit.records[0]
	if record.Metric != enums.QualityMetricAccuracy {
		t.Fatalf("unexpected metric: %s", record.Metric)
	}
	if record.Score != 95 {
		t.Fatalf("unexpected recorded score: %d", record.Score)
	}
	if record.EvaluatedBy != nil {
		t.Fatal("automatic decay must not carry an evaluator")
	}
	var details degradationDetails
	if err := json.Unmarshal(record.Details, &details); err != nil {
		t.Fatalf("unmarshal details: %v", err)
	}
	if details.DaysOverdue != 30 || details.DegradationRate != 5 || details.PreviousScore != 100 {
		t.Fatalf("unexpected details: %+v", details)
	}
	if details.Reason != "Automatic degradation due to overdue verification" {
		t.Fatalf("unexpected reason: %s", details.Reason)
	}
}

func TestDecayJobUsesEquipmentRate(t *testing.T) {
	helper := createDecayJobTest(t)
	now := time.Date(2026, 4, 1, 2, 0, 0, 0, time.UTC)
	helper.job.now = func() time.Time { return now }

	rate := 10
	eq := overdueEquipmentRow(60, 60, &rate, now)
	helper.store.rows = []models.Equipment{eq}

	if err := helper.job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// 60 * 10 * 60 / 3000 = 12
	if got := helper.store.updates[eq.ID]; got != 48 {
		t.Fatalf("expected score 48, got %d", got)
	}
}

func TestDecayJobClampsAtZero(t *testing.T) {
	helper := createDecayJobTest(t)
	now := time.Date(2026, 4, 1, 2, 0, 0, 0, time.UTC)
	helper.job.now = func() time.Time { return now }

	rate := 50
	eq := overdueEquipmentRow(40, 400, &rate, now)
	helper.store.rows = []models.Equipment{eq}

	if err := helper.job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, ok := helper.store.updates[eq.ID]; !ok || got != 0 {
		t.Fatalf("expected clamp at zero, got %d (updated=%v)", got, ok)
	}
}

func TestDecayJobSkipsWhenDegradationRoundsToZero(t *testing.T) {
	helper := createDecayJobTest(t)
	now := time.Date(2026, 4, 1, 2, 0, 0, 0, time.UTC)
	helper.job.now = func() time.Time { return now }

	// 10 * 5 * 1 / 3000 = 0, so neither table is touched
	eq := overdueEquipmentRow(10, 1, nil, now)
	helper.store.rows = []models.Equipment{eq}

	if err := helper.job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(helper.store.updates) != 0 {
		t.Fatal("expected no score update")
	}
	if len(helper.audit.records) != 0 {
		t.Fatal("expected no audit record")
	}
}

func TestDecayJobIsolatesPerEquipmentFailures(t *testing.T) {
	helper := createDecayJobTest(t)
	now := time.Date(2026, 4, 1, 2, 0, 0, 0, time.UTC)
	helper.job.now = func() time.Time { return now }

	first := overdueEquipmentRow(100, 30, nil, now)
	second := overdueEquipmentRow(100, 30, nil, now)
	helper.store.rows = []models.Equipment{first, second}
	helper.audit.err = errors.New("insert failed")

	if err := helper.job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// both rows attempted despite the audit failure
	if len(helper.store.updates) != 2 {
		t.Fatalf("expected both rows attempted, got %d", len(helper.store.updates))
	}
	if len(helper.audit.records) != 0 {
		t.Fatal("expected no audit records on failure")
	}
}

func TestDecayJobQueryFailureAbortsRun(t *testing.T) {
	helper := createDecayJobTest(t)
	helper.store.listErr = errors.New("db down")
	if err := helper.job.Run(context.Background()); err == nil {
		t.Fatal("expected error when the overdue query fails")
	}
}
