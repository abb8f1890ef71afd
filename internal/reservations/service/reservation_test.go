package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
	"venuebook/internal/reservations/validator"
	"venuebook/pkg/config"
	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/logger"
	"venuebook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hallA = "65f000000000000000000001"
	hallB = "65f000000000000000000002"
	day   = "2025-03-10"
)

var (
	requester = model.Actor{ID: "user-1", Email: "ada@example.com", Role: model.RoleUser}
	stranger  = model.Actor{ID: "user-2", Email: "bob@example.com", Role: model.RoleUser}
	staff     = model.Actor{ID: "staff-1", Email: "staff@example.com", Role: model.RoleStaff}
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	svc      ReservationService
	repo     *fakeRepository
	locks    *fakeLocks
	notifier *captureNotifier
	clock    *testClock
	start    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	cfg := &config.Config{
		Log:                     log,
		OpeningTime:             "09:00",
		ClosingTime:             "18:00",
		SlotLength:              time.Hour,
		SuggestionLookaheadDays: 7,
		CodeTTL:                 10 * time.Minute,
		ProvisionalGrace:        30 * time.Minute,
		LockTTL:                 10 * time.Second,
		LockRetryAttempts:       3,
		LockRetryDelay:          time.Millisecond,
	}

	start := time.Date(2025, 3, 9, 8, 0, 0, 0, time.UTC)
	f := &fixture{
		repo:     &fakeRepository{},
		locks:    newFakeLocks(),
		notifier: &captureNotifier{},
		clock:    &testClock{now: start},
		start:    start,
	}
	venues := fakeVenues{
		hallA: {ID: hallA, Name: "Hall-A", Capacity: 50, Active: true},
		hallB: {ID: hallB, Name: "Hall-B", Capacity: 10, Active: false},
	}

	svc, err := NewReservationService(f.repo, f.locks, venues, validator.NewReservationValidator(log), f.notifier, cfg,
		WithClock(f.clock.Now),
		WithCodeGenerator(func() (string, error) { return "482193", nil }),
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func request(start, end string) *model.ReservationRequest {
	return &model.ReservationRequest{VenueID: hallA, Date: day, StartTime: start, EndTime: end}
}

// seed stores a reservation directly, bypassing the lifecycle.
func (f *fixture) seed(t *testing.T, status, start, end string) *model.Reservation {
	t.Helper()
	r := &model.Reservation{
		VenueID:     hallA,
		RequesterID: "someone-else",
		Date:        day,
		StartTime:   start,
		EndTime:     end,
		Status:      status,
		CreatedAt:   f.clock.Now(),
	}
	require.NoError(t, f.repo.Create(context.Background(), r))
	return r
}

func (f *fixture) create(t *testing.T, start, end string) *model.ReservationReceipt {
	t.Helper()
	receipt, err := f.svc.Create(context.Background(), requester, request(start, end))
	require.NoError(t, err)
	return receipt
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperrors.AsAppError(err).Code, "got %v", err)
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreate_IssuesProvisionalReservationWithCode(t *testing.T) {
	f := newFixture(t)

	receipt := f.create(t, "10:00", "11:00")

	r := receipt.Reservation
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, model.StatusProvisional, r.Status)
	assert.Equal(t, "Booking for Hall-A on 2025-03-10", r.Title)
	assert.Equal(t, config.DefaultPurpose, r.Purpose)
	assert.Equal(t, "Hall-A", r.VenueName)
	assert.Equal(t, "482193", receipt.IssuedCode)
	assert.Equal(t, f.start.Add(10*time.Minute), receipt.CodeExpiresAt)

	require.Len(t, f.notifier.sent, 1)
	sent := f.notifier.sent[0]
	assert.Equal(t, model.EventCodeIssued, sent.EventType)
	assert.Equal(t, "ada@example.com", sent.Recipient)
	assert.Contains(t, sent.Body, "482193")

	assert.Empty(t, f.locks.held, "lock released after create")
	assert.Equal(t, 1, f.locks.released)
}

func TestCreate_NormalizesRequesterEmail(t *testing.T) {
	f := newFixture(t)
	actor := model.Actor{ID: "user-3", Email: " Ada@Example.COM", Role: model.RoleUser}

	receipt, err := f.svc.Create(context.Background(), actor, request("10:00", "11:00"))
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", receipt.Reservation.RequesterEmail)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "ada@example.com", f.notifier.sent[0].Recipient)
}

func TestCreate_ConflictWithConfirmed(t *testing.T) {
	f := newFixture(t)
	blocking := f.seed(t, model.StatusConfirmed, "10:00", "11:00")

	_, err := f.svc.Create(context.Background(), requester, request("10:30", "11:30"))

	requireCode(t, err, apperrors.CodeConflict)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, "Time slot conflicts with existing confirmed booking", appErr.Message)
	assert.Equal(t, "overlap with confirmed", appErr.Details["conflict_type"])
	assert.Equal(t, blocking.ID, appErr.Details["blocking_reservation_id"])
	assert.Equal(t, model.StatusConfirmed, appErr.Details["blocking_status"])

	all, _ := f.repo.FindByVenueAndDate(context.Background(), hallA, day)
	assert.Len(t, all, 1, "nothing persisted on conflict")
	assert.Empty(t, f.notifier.sent)
	assert.Empty(t, f.locks.held)
}

func TestCreate_ConflictWithProvisional(t *testing.T) {
	f := newFixture(t)
	f.seed(t, model.StatusProvisional, "10:00", "12:00")

	_, err := f.svc.Create(context.Background(), requester, request("11:00", "11:30"))

	requireCode(t, err, apperrors.CodeConflict)
	assert.Equal(t, "overlap with provisional", apperrors.AsAppError(err).Details["conflict_type"])
}

func TestCreate_BackToBackAndInertReservations(t *testing.T) {
	f := newFixture(t)
	f.seed(t, model.StatusConfirmed, "10:00", "11:00")
	f.seed(t, model.StatusCancelled, "11:00", "12:00")
	f.seed(t, model.StatusRejected, "11:00", "12:00")

	receipt := f.create(t, "11:00", "12:00")

	assert.Equal(t, model.StatusProvisional, receipt.Reservation.Status)
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name string
		req  *model.ReservationRequest
		code string
	}{
		{"start after end", request("11:00", "10:00"), apperrors.CodeValidation},
		{"malformed time", request("10", "11:00"), apperrors.CodeValidation},
		{"past date", &model.ReservationRequest{VenueID: hallA, Date: "2025-03-08", StartTime: "10:00", EndTime: "11:00"}, apperrors.CodeValidation},
		{"unknown venue", &model.ReservationRequest{VenueID: "65f0000000000000000000ff", Date: day, StartTime: "10:00", EndTime: "11:00"}, apperrors.CodeNotFound},
		{"inactive venue", &model.ReservationRequest{VenueID: hallB, Date: day, StartTime: "10:00", EndTime: "11:00"}, apperrors.CodeValidation},
		{"over capacity", &model.ReservationRequest{VenueID: hallA, Date: day, StartTime: "10:00", EndTime: "11:00", ExpectedAttendees: 51}, apperrors.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.svc.Create(context.Background(), requester, tt.req)

			requireCode(t, err, tt.code)
			assert.Empty(t, f.repo.items)
		})
	}
}

func TestCreate_TodayIsAllowed(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), requester, &model.ReservationRequest{
		VenueID: hallA, Date: "2025-03-09", StartTime: "10:00", EndTime: "11:00",
	})
	assert.NoError(t, err)
}

func TestCreate_LockHeldByAnotherRequest(t *testing.T) {
	f := newFixture(t)
	f.locks.held["reservation_lock:"+hallA+":"+day] = "other"

	_, err := f.svc.Create(context.Background(), requester, request("10:00", "11:00"))

	requireCode(t, err, apperrors.CodeConflict)
	assert.Empty(t, f.repo.items)
	assert.Equal(t, "other", f.locks.held["reservation_lock:"+hallA+":"+day], "foreign lock untouched")
}

func TestCreate_NoDoubleBookingUnderConcurrency(t *testing.T) {
	f := newFixture(t)

	const callers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), requester, request("14:00", "15:00"))
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict), "unexpected error: %v", err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	active, _ := f.repo.FindByVenueAndDateRange(context.Background(), hallA, day, day)
	assert.Len(t, active, 1)
}

func TestCreate_NotificationFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errBoom

	receipt, err := f.svc.Create(context.Background(), requester, request("10:00", "11:00"))

	require.NoError(t, err)
	assert.Equal(t, model.StatusProvisional, f.repo.status(receipt.Reservation.ID))
}

// ────────────────────────────────────────────────
// Verification codes
// ────────────────────────────────────────────────

func TestVerify_WithinValidity(t *testing.T) {
	f := newFixture(t)
	receipt := f.create(t, "10:00", "11:00")

	f.clock.Set(f.start.Add(9 * time.Minute))
	r, err := f.svc.Verify(context.Background(), receipt.Reservation.ID, "482193")

	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, r.Status)
	require.NotNil(t, r.ConfirmedAt)
	assert.Nil(t, r.ApprovedAt)
	assert.Empty(t, r.Code)

	stored, _ := f.repo.FindByID(context.Background(), r.ID)
	assert.Equal(t, model.StatusConfirmed, stored.Status)
	assert.Empty(t, stored.Code)
	assert.Nil(t, stored.CodeExpiresAt)
	assert.Equal(t, []string{model.EventCodeIssued, model.EventConfirmed}, f.notifier.events())
}

func TestVerify_ExpiredRegardlessOfCode(t *testing.T) {
	for _, offset := range []time.Duration{10 * time.Minute, 11 * time.Minute} {
		t.Run(offset.String(), func(t *testing.T) {
			f := newFixture(t)
			receipt := f.create(t, "10:00", "11:00")

			f.clock.Set(f.start.Add(offset))
			_, err := f.svc.Verify(context.Background(), receipt.Reservation.ID, "482193")
			requireCode(t, err, apperrors.CodeCodeExpired)

			_, err = f.svc.Verify(context.Background(), receipt.Reservation.ID, "000000")
			requireCode(t, err, apperrors.CodeCodeExpired)

			assert.Equal(t, model.StatusProvisional, f.repo.status(receipt.Reservation.ID))
		})
	}
}

func TestVerify_WrongCodeLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	receipt := f.create(t, "10:00", "11:00")

	for _, code := range []string{"482194", " 482193", "48219", ""} {
		_, err := f.svc.Verify(context.Background(), receipt.Reservation.ID, code)
		requireCode(t, err, apperrors.CodeCodeInvalid)
	}

	stored, _ := f.repo.FindByID(context.Background(), receipt.Reservation.ID)
	assert.Equal(t, model.StatusProvisional, stored.Status)
	assert.Equal(t, "482193", stored.Code)
}

func TestVerify_NoPendingCode(t *testing.T) {
	f := newFixture(t)
	r := f.seed(t, model.StatusProvisional, "10:00", "11:00")

	_, err := f.svc.Verify(context.Background(), r.ID, "482193")

	requireCode(t, err, apperrors.CodeInvalidState)
}

func TestVerify_UnknownReservation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Verify(context.Background(), "65f0000000000000000000aa", "482193")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestResendCode_InvalidatesPreviousCode(t *testing.T) {
	f := newFixture(t)
	codes := []string{"111111", "222222"}
	svc := f.svc.(*reservationService)
	svc.newCode = func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}
	receipt := f.create(t, "10:00", "11:00")
	require.Equal(t, "111111", receipt.IssuedCode)

	f.clock.Set(f.start.Add(8 * time.Minute))
	resent, err := f.svc.ResendCode(context.Background(), requester, receipt.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, "222222", resent.IssuedCode)
	assert.Equal(t, f.start.Add(18*time.Minute), resent.CodeExpiresAt)

	f.clock.Set(f.start.Add(15 * time.Minute))
	_, err = f.svc.Verify(context.Background(), receipt.Reservation.ID, "111111")
	requireCode(t, err, apperrors.CodeCodeInvalid)

	r, err := f.svc.Verify(context.Background(), receipt.Reservation.ID, "222222")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, r.Status)
}

func TestResendCode_Guards(t *testing.T) {
	f := newFixture(t)
	receipt := f.create(t, "10:00", "11:00")

	_, err := f.svc.ResendCode(context.Background(), stranger, receipt.Reservation.ID)
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.svc.Approve(context.Background(), staff, receipt.Reservation.ID)
	require.NoError(t, err)

	_, err = f.svc.ResendCode(context.Background(), requester, receipt.Reservation.ID)
	requireCode(t, err, apperrors.CodeInvalidState)
}

// ────────────────────────────────────────────────
// Staff and requester transitions
// ────────────────────────────────────────────────

func TestApprove(t *testing.T) {
	f := newFixture(t)
	receipt := f.create(t, "10:00", "11:00")
	f.clock.Set(f.start.Add(time.Hour))

	r, err := f.svc.Approve(context.Background(), staff, receipt.Reservation.ID)

	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, r.Status)
	assert.Equal(t, "staff@example.com", r.ApprovedBy)
	require.NotNil(t, r.ApprovedAt)
	require.NotNil(t, r.ConfirmedAt)
	assert.Equal(t, f.start.Add(time.Hour), *r.ApprovedAt)
	assert.Equal(t, *r.ApprovedAt, *r.ConfirmedAt)
	assert.Equal(t, []string{model.EventCodeIssued, model.EventApproved}, f.notifier.events())

	_, err = f.svc.Approve(context.Background(), staff, receipt.Reservation.ID)
	requireCode(t, err, apperrors.CodeInvalidState)
	assert.Len(t, f.notifier.sent, 2, "no repeated side effect")
}

func TestReject(t *testing.T) {
	f := newFixture(t)
	receipt := f.create(t, "10:00", "11:00")

	r, err := f.svc.Reject(context.Background(), staff, receipt.Reservation.ID)

	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, r.Status)
	assert.NotNil(t, r.RejectedAt)
	assert.Equal(t, model.EventRejected, f.notifier.sent[1].EventType)

	// rejected reservations no longer block the slot
	f.create(t, "10:00", "11:00")
}

func TestCancel_OwnerOnlyAndProvisionalOnly(t *testing.T) {
	f := newFixture(t)
	receipt := f.create(t, "10:00", "11:00")
	id := receipt.Reservation.ID

	_, err := f.svc.Cancel(context.Background(), stranger, id)
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.svc.Cancel(context.Background(), staff, id)
	requireCode(t, err, apperrors.CodeForbidden)

	r, err := f.svc.Cancel(context.Background(), requester, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, r.Status)
	assert.NotNil(t, r.CancelledAt)

	confirmed := f.create(t, "12:00", "13:00")
	_, err = f.svc.Approve(context.Background(), staff, confirmed.Reservation.ID)
	require.NoError(t, err)
	_, err = f.svc.Cancel(context.Background(), requester, confirmed.Reservation.ID)
	requireCode(t, err, apperrors.CodeInvalidState)
}

func TestAdminCancel(t *testing.T) {
	f := newFixture(t)
	receipt := f.create(t, "10:00", "11:00")

	r, err := f.svc.AdminCancel(context.Background(), staff, receipt.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, r.Status)
	assert.Equal(t, model.EventCancelled, f.notifier.sent[1].EventType)
}

func TestTerminalStatesRejectEveryTransition(t *testing.T) {
	for _, status := range []string{model.StatusConfirmed, model.StatusRejected, model.StatusCancelled} {
		t.Run(status, func(t *testing.T) {
			f := newFixture(t)
			r := f.seed(t, status, "10:00", "11:00")
			r.RequesterID = requester.ID
			f.repo.items[0].RequesterID = requester.ID
			ctx := context.Background()

			attempts := map[string]func() error{
				"verify":       func() error { _, err := f.svc.Verify(ctx, r.ID, "482193"); return err },
				"approve":      func() error { _, err := f.svc.Approve(ctx, staff, r.ID); return err },
				"reject":       func() error { _, err := f.svc.Reject(ctx, staff, r.ID); return err },
				"cancel":       func() error { _, err := f.svc.Cancel(ctx, requester, r.ID); return err },
				"admin cancel": func() error { _, err := f.svc.AdminCancel(ctx, staff, r.ID); return err },
				"resend":       func() error { _, err := f.svc.ResendCode(ctx, requester, r.ID); return err },
				"expire":       func() error { return f.svc.Expire(ctx, r) },
			}
			for name, attempt := range attempts {
				requireCode(t, attempt(), apperrors.CodeInvalidState)
				assert.Equal(t, status, f.repo.status(r.ID), name)
			}
			assert.Empty(t, f.notifier.sent)
		})
	}
}

// ────────────────────────────────────────────────
// Reads
// ────────────────────────────────────────────────

func TestGetByID_Visibility(t *testing.T) {
	f := newFixture(t)
	receipt := f.create(t, "10:00", "11:00")
	id := receipt.Reservation.ID

	_, err := f.svc.GetByID(context.Background(), requester, id)
	assert.NoError(t, err)
	_, err = f.svc.GetByID(context.Background(), staff, id)
	assert.NoError(t, err)
	_, err = f.svc.GetByID(context.Background(), stranger, id)
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestListPendingAndStats(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, "10:00", "11:00")
	f.clock.Set(f.start.Add(time.Minute))
	second := f.create(t, "11:00", "12:00")
	third := f.create(t, "12:00", "13:00")
	_, err := f.svc.Approve(context.Background(), staff, third.Reservation.ID)
	require.NoError(t, err)

	pending, err := f.svc.ListPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.Reservation.ID, pending[0].ID, "oldest first")
	assert.Equal(t, second.Reservation.ID, pending[1].ID)

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.StatusCount{
		{Status: model.StatusConfirmed, Count: 1},
		{Status: model.StatusProvisional, Count: 2},
	}, stats)

	mine, err := f.svc.ListMine(context.Background(), requester, "", 0)
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}

func TestListMine_StatusFilterAndLimit(t *testing.T) {
	f := newFixture(t)
	f.create(t, "10:00", "11:00")
	f.create(t, "11:00", "12:00")
	approved := f.create(t, "12:00", "13:00")
	_, err := f.svc.Approve(context.Background(), staff, approved.Reservation.ID)
	require.NoError(t, err)

	confirmed, err := f.svc.ListMine(context.Background(), requester, model.StatusConfirmed, 0)
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, approved.Reservation.ID, confirmed[0].ID)

	limited, err := f.svc.ListMine(context.Background(), requester, "", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	_, err = f.svc.ListMine(context.Background(), requester, "archived", 0)
	requireCode(t, err, apperrors.CodeInvalidInput)

	_, err = f.svc.ListMine(context.Background(), model.Actor{}, "", 0)
	requireCode(t, err, apperrors.CodeUnauthorized)
}

// ────────────────────────────────────────────────
// Availability
// ────────────────────────────────────────────────

func (f *fixture) seedOn(t *testing.T, date, status, start, end string) *model.Reservation {
	t.Helper()
	r := &model.Reservation{
		VenueID:     hallA,
		RequesterID: "someone-else",
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		Status:      status,
		CreatedAt:   f.clock.Now(),
	}
	require.NoError(t, f.repo.Create(context.Background(), r))
	return r
}

func TestAvailableSlots_ReportsBlockingReservation(t *testing.T) {
	f := newFixture(t)
	blocking := f.seed(t, model.StatusConfirmed, "10:00", "11:00")
	f.seed(t, model.StatusCancelled, "12:00", "13:00")

	slots, err := f.svc.AvailableSlots(context.Background(), hallA, day)
	require.NoError(t, err)
	require.Len(t, slots, 9)

	assert.Equal(t, "09:00", slots[0].StartTime)
	assert.True(t, slots[0].Free)
	assert.False(t, slots[1].Free)
	assert.Equal(t, blocking.ID, slots[1].BlockingID)
	assert.Equal(t, "overlap with confirmed", slots[1].ConflictType)
	assert.True(t, slots[3].Free, "cancelled reservations never block")
	assert.Equal(t, "17:00", slots[8].StartTime)
	assert.Equal(t, "18:00", slots[8].EndTime)

	_, err = f.svc.AvailableSlots(context.Background(), hallA, "10-03-2025")
	requireCode(t, err, apperrors.CodeInvalidInput)
}

func TestDayAvailability_MonthRollup(t *testing.T) {
	f := newFixture(t)
	f.seed(t, model.StatusConfirmed, "10:00", "11:00")
	for h := 9; h < 18; h++ {
		f.seedOn(t, "2025-03-31", model.StatusConfirmed, fmt.Sprintf("%02d:00", h), fmt.Sprintf("%02d:00", h+1))
	}
	f.seedOn(t, "2025-04-01", model.StatusConfirmed, "09:00", "18:00")

	days, err := f.svc.DayAvailability(context.Background(), hallA, 2025, time.March)
	require.NoError(t, err)
	require.Len(t, days, 31)
	assert.Equal(t, "2025-03-01", days[0].Date)

	assert.Equal(t, model.DayAvailability{Date: "2025-03-10", Available: true, FreeSlots: 8, TotalSlots: 9}, days[9])
	assert.Equal(t, model.DayAvailability{Date: "2025-03-11", Available: true, FreeSlots: 9, TotalSlots: 9}, days[10])
	assert.Equal(t, model.DayAvailability{Date: "2025-03-31", Available: false, FreeSlots: 0, TotalSlots: 9}, days[30])

	_, err = f.svc.DayAvailability(context.Background(), hallA, 2025, time.Month(13))
	requireCode(t, err, apperrors.CodeInvalidInput)
}

func TestSuggestAlternates_SameTimeThenSameDay(t *testing.T) {
	f := newFixture(t)
	f.seed(t, model.StatusConfirmed, "10:00", "11:00")
	f.seed(t, model.StatusProvisional, "14:00", "15:00")
	f.seedOn(t, "2025-03-12", model.StatusConfirmed, "10:00", "11:00")
	f.seedOn(t, "2025-03-18", model.StatusConfirmed, "09:00", "10:00")

	suggestions, err := f.svc.SuggestAlternates(context.Background(), hallA, day, "10:00", "11:00")
	require.NoError(t, err)

	var sameTime []string
	var sameDay []string
	for _, sg := range suggestions {
		switch sg.Kind {
		case "same time, different day":
			assert.Equal(t, "10:00", sg.StartTime)
			assert.Equal(t, "11:00", sg.EndTime)
			sameTime = append(sameTime, sg.Date)
		case "different time, same day":
			assert.Equal(t, day, sg.Date)
			sameDay = append(sameDay, sg.StartTime)
		default:
			t.Fatalf("unexpected kind %q", sg.Kind)
		}
	}

	assert.Equal(t, []string{"2025-03-11", "2025-03-13", "2025-03-14", "2025-03-15", "2025-03-16", "2025-03-17"}, sameTime)
	assert.Equal(t, []string{"09:00", "11:00", "12:00", "13:00", "15:00", "16:00", "17:00"}, sameDay)
	assert.Equal(t, "same time, different day", suggestions[0].Kind, "next days come first")

	_, err = f.svc.SuggestAlternates(context.Background(), hallA, day, "11:00", "10:00")
	requireCode(t, err, apperrors.CodeInvalidInput)
	_, err = f.svc.SuggestAlternates(context.Background(), "65f0000000000000000000ff", day, "10:00", "11:00")
	requireCode(t, err, apperrors.CodeNotFound)
}

// ────────────────────────────────────────────────
// Expiry
// ────────────────────────────────────────────────

func TestListStale_GracePeriodIsStrict(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		stale   bool
	}{
		{29 * time.Minute, false},
		{30 * time.Minute, false},
		{31 * time.Minute, true},
	}
	for _, tt := range tests {
		t.Run(tt.elapsed.String(), func(t *testing.T) {
			f := newFixture(t)
			f.create(t, "10:00", "11:00")

			f.clock.Set(f.start.Add(tt.elapsed))
			stale, err := f.svc.ListStale(context.Background(), 100)

			require.NoError(t, err)
			assert.Equal(t, tt.stale, len(stale) == 1)
		})
	}
}

func TestExpire(t *testing.T) {
	f := newFixture(t)
	receipt := f.create(t, "10:00", "11:00")
	f.clock.Set(f.start.Add(31 * time.Minute))

	stale, err := f.svc.ListStale(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, stale, 1)

	require.NoError(t, f.svc.Expire(context.Background(), stale[0]))

	assert.Equal(t, model.StatusCancelled, f.repo.status(receipt.Reservation.ID))
	last := f.notifier.sent[len(f.notifier.sent)-1]
	assert.Equal(t, model.EventExpired, last.EventType)
	assert.Equal(t, "Booking Expired", last.Subject)
}

func TestExpire_LosesRaceToApproval(t *testing.T) {
	f := newFixture(t)
	receipt := f.create(t, "10:00", "11:00")
	f.clock.Set(f.start.Add(31 * time.Minute))
	stale, err := f.svc.ListStale(context.Background(), 100)
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), staff, receipt.Reservation.ID)
	require.NoError(t, err)

	err = f.svc.Expire(context.Background(), stale[0])

	requireCode(t, err, apperrors.CodeInvalidState)
	assert.Equal(t, model.StatusConfirmed, f.repo.status(receipt.Reservation.ID))
}

// ────────────────────────────────────────────────
// Code generation
// ────────────────────────────────────────────────

func TestGenerateCode(t *testing.T) {
	for range 50 {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.Regexp(t, `^[0-9]{6}$`, code)
	}
}
