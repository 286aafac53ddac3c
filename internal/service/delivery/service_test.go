package delivery_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parcel-delivery/internal/apperr"
	"parcel-delivery/internal/domain"
	"parcel-delivery/internal/notification"
	"parcel-delivery/internal/repository"
	"parcel-delivery/internal/service/delivery"
	testlog "parcel-delivery/internal/testutil"
)

var monday9am = time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)

type fixture struct {
	deliveries  *MockDeliveryStore
	problems    *MockProblemStore
	deliverymen *MockDeliverymanLookup
	recipients  *MockRecipientLookup
	notifier    *MockNotifier
	log         *testlog.Recorder
	transitions *prometheus.CounterVec
	now         time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return &fixture{
		deliveries:  NewMockDeliveryStore(ctrl),
		problems:    NewMockProblemStore(ctrl),
		deliverymen: NewMockDeliverymanLookup(ctrl),
		recipients:  NewMockRecipientLookup(ctrl),
		notifier:    NewMockNotifier(ctrl),
		log:         testlog.New(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_transitions_total"}, []string{"event", "result"}),
		now:         monday9am,
	}
}

func (f *fixture) service() *delivery.Service {
	return delivery.NewService(delivery.Deps{
		Deliveries:  f.deliveries,
		Problems:    f.problems,
		Deliverymen: f.deliverymen,
		Recipients:  f.recipients,
		Notifier:    f.notifier,
	}, domain.DefaultRetrievalPolicy(), time.Second, f.log.Logger(),
		delivery.WithClock(func() time.Time { return f.now }),
		delivery.WithMetrics(f.transitions),
	)
}

func john() *domain.Deliveryman {
	return &domain.Deliveryman{ID: 7, Name: "John Doe", Email: "john@fastfeet.com"}
}

func ana() *domain.Recipient {
	return &domain.Recipient{
		ID: 3, Name: "Ana", Street: "Rua Vergueiro", StreetNumber: 1200, Complement: "Apto 42",
		State: "SP", City: "São Paulo", ZipCode: "01504000",
	}
}

func pending() *domain.Delivery {
	return &domain.Delivery{ID: 1, Product: "Notebook", RecipientID: 3, DeliverymanID: 7}
}

func retrieved() *domain.Delivery {
	d := pending()
	at := monday9am.Add(-time.Hour)
	d.StartDate = &at
	return d
}

func dayCond() repository.RetrieveCond {
	start := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	return repository.RetrieveCond{DayStart: start, DayEnd: start.Add(24 * time.Hour), Limit: 5}
}

func TestService_Create(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	f.deliverymen.EXPECT().Get(gomock.Any(), int64(7)).Return(john(), nil)
	f.recipients.EXPECT().Get(gomock.Any(), int64(3)).Return(ana(), nil)
	f.deliveries.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, d *domain.Delivery) error {
		require.Equal(t, "Notebook", d.Product)
		d.ID = 11
		return nil
	})
	f.notifier.EXPECT().
		Enqueue(gomock.Any(), notification.ConfirmationKey, notification.Payload{
			DeliverymanName: "John Doe",
			Email:           "john@fastfeet.com",
			RecipientName:   "Ana",
			Product:         "Notebook",
			FullAddress:     "Rua Vergueiro, 1200 - Apto 42 - SP - São Paulo 01504000",
		}).
		Return("job-1", nil)

	d, err := f.service().Create(ctx, delivery.CreateInput{Product: "  Notebook ", RecipientID: 3, DeliverymanID: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(11), d.ID)
	assert.Equal(t, domain.StatusPending, d.Status())
	assert.True(t, f.log.Has("delivery created"))
}

func TestService_Create_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := f.service()

	for _, in := range []delivery.CreateInput{
		{Product: " ", RecipientID: 3, DeliverymanID: 7},
		{Product: "Notebook", RecipientID: 0, DeliverymanID: 7},
		{Product: "Notebook", RecipientID: 3, DeliverymanID: -1},
	} {
		_, err := svc.Create(context.Background(), in)
		require.ErrorIs(t, err, apperr.ErrInvalid)
	}
}

func TestService_Create_UnknownDeliveryman(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.deliverymen.EXPECT().Get(gomock.Any(), int64(7)).Return(nil, nil)

	_, err := f.service().Create(context.Background(), delivery.CreateInput{Product: "Notebook", RecipientID: 3, DeliverymanID: 7})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_Create_EnqueueFailureIsLogged(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.deliverymen.EXPECT().Get(gomock.Any(), int64(7)).Return(john(), nil)
	f.recipients.EXPECT().Get(gomock.Any(), int64(3)).Return(ana(), nil)
	f.deliveries.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.notifier.EXPECT().Enqueue(gomock.Any(), notification.ConfirmationKey, gomock.Any()).Return("", errors.New("queue full"))

	_, err := f.service().Create(context.Background(), delivery.CreateInput{Product: "Notebook", RecipientID: 3, DeliverymanID: 7})
	require.NoError(t, err)
	assert.True(t, f.log.Has("enqueue notification failed"))
}

func TestService_Retrieve(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.deliveries.EXPECT().CountRetrievedBetween(gomock.Any(), int64(7), dayCond().DayStart, dayCond().DayEnd).Return(2, nil)
	f.deliveries.EXPECT().Get(gomock.Any(), int64(1)).Return(pending(), nil)
	f.deliveries.EXPECT().MarkRetrieved(gomock.Any(), int64(1), int64(7), monday9am, dayCond()).Return(true, nil)

	d, err := f.service().Retrieve(context.Background(), 7, 1)
	require.NoError(t, err)
	require.NotNil(t, d.StartDate)
	assert.True(t, d.StartDate.Equal(monday9am))

	entries := f.log.ByMsg("delivery retrieved")
	require.Len(t, entries, 1)
	ev, _ := entries[0].Field("event")
	assert.Equal(t, "delivery_retrieved", ev)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.transitions.WithLabelValues("delivery_retrieved", "ok")))
}

func TestService_Retrieve_Guards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		now     time.Time
		count   int
		current *domain.Delivery
		want    error
	}{
		{name: "sixth pickup of the day", now: monday9am, count: 5, current: pending(), want: apperr.ErrRateLimitExceeded},
		{name: "missing", now: monday9am, current: nil, want: apperr.ErrNotFound},
		{name: "other deliveryman", now: monday9am, current: &domain.Delivery{ID: 1, DeliverymanID: 8}, want: apperr.ErrForbidden},
		{name: "already retrieved", now: monday9am, current: retrieved(), want: apperr.ErrAlreadyRetrieved},
		{name: "before opening", now: time.Date(2024, 3, 11, 7, 59, 0, 0, time.UTC), current: pending(), want: apperr.ErrOutsideRetrievalWindow},
		{name: "at closing", now: time.Date(2024, 3, 11, 18, 0, 0, 0, time.UTC), current: pending(), want: apperr.ErrOutsideRetrievalWindow},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.now = tt.now
			f.deliveries.EXPECT().CountRetrievedBetween(gomock.Any(), int64(7), gomock.Any(), gomock.Any()).Return(tt.count, nil)
			f.deliveries.EXPECT().Get(gomock.Any(), int64(1)).Return(tt.current, nil)

			_, err := f.service().Retrieve(context.Background(), 7, 1)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, float64(1), testutil.ToFloat64(f.transitions.WithLabelValues("delivery_retrieved", "rejected")))
		})
	}
}

func TestService_Retrieve_LostRaceReportsPreciseFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	gomock.InOrder(
		f.deliveries.EXPECT().CountRetrievedBetween(gomock.Any(), int64(7), gomock.Any(), gomock.Any()).Return(0, nil),
		f.deliveries.EXPECT().Get(gomock.Any(), int64(1)).Return(pending(), nil),
		f.deliveries.EXPECT().MarkRetrieved(gomock.Any(), int64(1), int64(7), monday9am, dayCond()).Return(false, nil),
		f.deliveries.EXPECT().CountRetrievedBetween(gomock.Any(), int64(7), gomock.Any(), gomock.Any()).Return(1, nil),
		f.deliveries.EXPECT().Get(gomock.Any(), int64(1)).Return(retrieved(), nil),
	)

	_, err := f.service().Retrieve(context.Background(), 7, 1)
	require.ErrorIs(t, err, apperr.ErrAlreadyRetrieved)
}

func TestService_Retrieve_LostRaceLimitReached(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	gomock.InOrder(
		f.deliveries.EXPECT().CountRetrievedBetween(gomock.Any(), int64(7), gomock.Any(), gomock.Any()).Return(4, nil),
		f.deliveries.EXPECT().Get(gomock.Any(), int64(1)).Return(pending(), nil),
		f.deliveries.EXPECT().MarkRetrieved(gomock.Any(), int64(1), int64(7), monday9am, dayCond()).Return(false, nil),
		f.deliveries.EXPECT().CountRetrievedBetween(gomock.Any(), int64(7), gomock.Any(), gomock.Any()).Return(5, nil),
		f.deliveries.EXPECT().Get(gomock.Any(), int64(1)).Return(pending(), nil),
	)

	_, err := f.service().Retrieve(context.Background(), 7, 1)
	require.ErrorIs(t, err, apperr.ErrRateLimitExceeded)
}

func TestService_Retrieve_LostRaceUnexplainedIsConflict(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.deliveries.EXPECT().CountRetrievedBetween(gomock.Any(), int64(7), gomock.Any(), gomock.Any()).Return(0, nil).Times(2)
	f.deliveries.EXPECT().Get(gomock.Any(), int64(1)).Return(pending(), nil).Times(2)
	f.deliveries.EXPECT().MarkRetrieved(gomock.Any(), int64(1), int64(7), gomock.Any(), gomock.Any()).Return(false, nil)

	_, err := f.service().Retrieve(context.Background(), 7, 1)
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestService_Retrieve_InvalidIDs(t *testing.T) {
	t.Parallel()

	_, err := newFixture(t).service().Retrieve(context.Background(), 0, 1)
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestService_Deliver(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.deliveries.EXPECT().Get(gomock.Any(), int64(1)).Return(retrieved(), nil)
	f.deliveries.EXPECT().MarkDelivered(gomock.Any(), int64(1), int64(7), int64(42), monday9am).Return(true, nil)

	d, err := f.service().Deliver(context.Background(), 7, 1, 42)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, d.Status())
	assert.Equal(t, int64(42), *d.SignatureID)
}

func TestService_Deliver_Guards(t *testing.T) {
	t.Parallel()

	cancelled := retrieved()
	at := monday9am
	cancelled.CancelledAt = &at

	delivered := retrieved()
	delivered.EndDate = &at

	tests := []struct {
		name    string
		current *domain.Delivery
		want    error
	}{
		{name: "missing", current: nil, want: apperr.ErrNotFound},
		{name: "other deliveryman", current: &domain.Delivery{ID: 1, DeliverymanID: 8}, want: apperr.ErrForbidden},
		{name: "cancelled", current: cancelled, want: apperr.ErrAlreadyCancelled},
		{name: "not retrieved", current: pending(), want: apperr.ErrNotYetRetrieved},
		{name: "delivered", current: delivered, want: apperr.ErrAlreadyDelivered},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.deliveries.EXPECT().Get(gomock.Any(), int64(1)).Return(tt.current, nil)

			_, err := f.service().Deliver(context.Background(), 7, 1, 42)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestService_Deliver_RequiresSignature(t *testing.T) {
	t.Parallel()

	_, err := newFixture(t).service().Deliver(context.Background(), 7, 1, 0)
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestService_Deliver_StoreError(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	boom := errors.New("connection reset")
	f.deliveries.EXPECT().Get(gomock.Any(), int64(1)).Return(retrieved(), nil)
	f.deliveries.EXPECT().MarkDelivered(gomock.Any(), int64(1), int64(7), int64(42), gomock.Any()).Return(false, boom)

	_, err := f.service().Deliver(context.Background(), 7, 1, 42)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.transitions.WithLabelValues("delivery_delivered", "error")))
}

func TestService_ReportProblem(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.deliveries.EXPECT().Get(gomock.Any(), int64(1)).Return(retrieved(), nil)
	f.problems.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *domain.Problem) (bool, error) {
		require.Equal(t, "box damaged", p.Description)
		require.Equal(t, int64(1), p.DeliveryID)
		p.ID = 5
		return true, nil
	})

	p, err := f.service().ReportProblem(context.Background(), 1, "  box damaged ")
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.ID)
	assert.True(t, p.CreatedAt.Equal(monday9am))
}

func TestService_ReportProblem_Guards(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.deliveries.EXPECT().Get(gomock.Any(), int64(1)).Return(pending(), nil)
	_, err := f.service().ReportProblem(context.Background(), 1, "late")
	require.ErrorIs(t, err, apperr.ErrNotYetRetrieved)

	_, err = f.service().ReportProblem(context.Background(), 1, "   ")
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestService_ReportProblem_LostToCancellation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	cancelled := retrieved()
	at := monday9am
	cancelled.CancelledAt = &at

	gomock.InOrder(
		f.deliveries.EXPECT().Get(gomock.Any(), int64(1)).Return(retrieved(), nil),
		f.problems.EXPECT().Create(gomock.Any(), gomock.Any()).Return(false, nil),
		f.deliveries.EXPECT().Get(gomock.Any(), int64(1)).Return(cancelled, nil),
	)

	_, err := f.service().ReportProblem(context.Background(), 1, "late")
	require.ErrorIs(t, err, apperr.ErrAlreadyCancelled)
}

func TestService_CancelByProblem(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.problems.EXPECT().Get(gomock.Any(), int64(5)).Return(&domain.Problem{ID: 5, DeliveryID: 1}, nil)
	f.deliveries.EXPECT().Get(gomock.Any(), int64(1)).Return(retrieved(), nil)
	f.deliveries.EXPECT().MarkCancelled(gomock.Any(), int64(1), monday9am).Return(true, nil)
	f.deliverymen.EXPECT().Get(gomock.Any(), int64(7)).Return(john(), nil)
	f.recipients.EXPECT().Get(gomock.Any(), int64(3)).Return(ana(), nil)
	f.notifier.EXPECT().
		Enqueue(gomock.Any(), notification.CancellationKey, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, payload any) (string, error) {
			p, ok := payload.(notification.Payload)
			require.True(t, ok)
			require.Equal(t, "Rua Vergueiro, 1200 - Apto 42 - SP - São Paulo 01504000", p.FullAddress)
			require.Equal(t, "john@fastfeet.com", p.Email)
			return "job-2", nil
		}).
		Times(1)

	d, err := f.service().CancelByProblem(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, d.Status())
	assert.Nil(t, d.EndDate)
}

func TestService_CancelByProblem_Guards(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.problems.EXPECT().Get(gomock.Any(), int64(404)).Return(nil, nil)
	_, err := f.service().CancelByProblem(context.Background(), 404)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	delivered := retrieved()
	at := monday9am
	delivered.EndDate = &at
	f.problems.EXPECT().Get(gomock.Any(), int64(5)).Return(&domain.Problem{ID: 5, DeliveryID: 1}, nil)
	f.deliveries.EXPECT().Get(gomock.Any(), int64(1)).Return(delivered, nil)
	_, err = f.service().CancelByProblem(context.Background(), 5)
	require.ErrorIs(t, err, apperr.ErrAlreadyDelivered)
}

func TestService_CancelByProblem_MissingDeliverymanSkipsMail(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.problems.EXPECT().Get(gomock.Any(), int64(5)).Return(&domain.Problem{ID: 5, DeliveryID: 1}, nil)
	f.deliveries.EXPECT().Get(gomock.Any(), int64(1)).Return(pending(), nil)
	f.deliveries.EXPECT().MarkCancelled(gomock.Any(), int64(1), gomock.Any()).Return(true, nil)
	f.deliverymen.EXPECT().Get(gomock.Any(), int64(7)).Return(nil, nil)
	f.recipients.EXPECT().Get(gomock.Any(), int64(3)).Return(ana(), nil)

	_, err := f.service().CancelByProblem(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, f.log.Has("cancellation mail skipped"))
}

func TestService_ListForDeliveryman(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.deliverymen.EXPECT().Get(gomock.Any(), int64(7)).Return(john(), nil)
	f.deliveries.EXPECT().
		List(gomock.Any(), domain.DeliveryFilter{
			DeliverymanID: 7,
			Cancelled:     domain.Ptr(false),
			Delivered:     domain.Ptr(true),
		}, domain.PageFromNumber(2)).
		Return([]domain.Delivery{*retrieved()}, 21, nil)

	items, total, err := f.service().ListForDeliveryman(context.Background(), 7, true, domain.PageFromNumber(2))
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 21, total)
}

func TestService_ListProblems_UnknownDelivery(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.deliveries.EXPECT().Get(gomock.Any(), int64(9)).Return(nil, nil)

	_, _, err := f.service().ListProblems(context.Background(), 9, domain.PageFromNumber(1))
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	_, err := svc.Update(ctx, domain.DeliveryUpdate{ID: 1})
	require.ErrorIs(t, err, apperr.ErrInvalid)

	f.deliveries.EXPECT().Update(gomock.Any(), domain.DeliveryUpdate{ID: 1, Product: domain.Ptr("Phone")}).Return(true, nil)
	f.deliveries.EXPECT().Get(gomock.Any(), int64(1)).Return(&domain.Delivery{ID: 1, Product: "Phone"}, nil)
	d, err := svc.Update(ctx, domain.DeliveryUpdate{ID: 1, Product: domain.Ptr(" Phone ")})
	require.NoError(t, err)
	assert.Equal(t, "Phone", d.Product)

	f.deliveries.EXPECT().Delete(gomock.Any(), int64(2)).Return(false, nil)
	require.ErrorIs(t, svc.Delete(ctx, 2), apperr.ErrNotFound)
}
