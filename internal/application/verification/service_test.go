package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-verify-api/internal/delivery"
	"github.com/go-verify-api/internal/domain"
	"github.com/go-verify-api/internal/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockStore struct{ mock.Mock }

func (m *mockStore) Put(identity string, rec *domain.OTPRecord) {
	m.Called(identity, rec)
}
func (m *mockStore) ConsumeIfValid(identity, candidate string) domain.VerifyOutcome {
	return m.Called(identity, candidate).Get(0).(domain.VerifyOutcome)
}

type mockGenerator struct{ mock.Mock }

func (m *mockGenerator) Generate() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) Send(ctx context.Context, identity, code string) (delivery.Outcome, error) {
	args := m.Called(ctx, identity, code)
	return args.Get(0).(delivery.Outcome), args.Error(1)
}

// --- builder ---

func newService(st Store, gen Generator, gw Gateway, echo bool) Service {
	return NewService(ServiceDeps{
		Store:     st,
		Generator: gen,
		Gateway:   gw,
		TTL:       10 * time.Minute,
		EchoCode:  echo,
	})
}

// --- IssueCode ---

func TestIssueCode_EmptyIdentity(t *testing.T) {
	svc := newService(nil, nil, nil, false)
	_, err := svc.IssueCode(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestIssueCode_HappyPath(t *testing.T) {
	st := &mockStore{}
	gen := &mockGenerator{}
	gw := &mockGateway{}

	gen.On("Generate").Return("042137", nil)
	st.On("Put", "a@x.com", mock.AnythingOfType("*domain.OTPRecord")).Return()
	gw.On("Send", mock.Anything, "a@x.com", "042137").Return(delivery.Delivered, nil)

	svc := newService(st, gen, gw, false)
	res, err := svc.IssueCode(context.Background(), "a@x.com")

	require.NoError(t, err)
	assert.True(t, res.Delivered)
	assert.Empty(t, res.Code) // never echoed outside debug mode
	st.AssertExpectations(t)
	gw.AssertExpectations(t)
}

func TestIssueCode_NormalizesIdentity(t *testing.T) {
	st := &mockStore{}
	gen := &mockGenerator{}
	gw := &mockGateway{}

	gen.On("Generate").Return("042137", nil)
	st.On("Put", "a@x.com", mock.AnythingOfType("*domain.OTPRecord")).Return()
	gw.On("Send", mock.Anything, "a@x.com", "042137").Return(delivery.Delivered, nil)

	svc := newService(st, gen, gw, false)
	_, err := svc.IssueCode(context.Background(), "  A@X.COM ")

	require.NoError(t, err)
	st.AssertExpectations(t)
}

func TestIssueCode_RecordHoldsHashNotCleartext(t *testing.T) {
	st := &mockStore{}
	gen := &mockGenerator{}
	gw := &mockGateway{}

	gen.On("Generate").Return("042137", nil)
	st.On("Put", "a@x.com", mock.MatchedBy(func(rec *domain.OTPRecord) bool {
		return rec.ID != "" &&
			string(rec.CodeHash) != "042137" &&
			rec.Match("042137") &&
			rec.ExpiresAt.Sub(rec.IssuedAt) == 10*time.Minute
	})).Return()
	gw.On("Send", mock.Anything, "a@x.com", "042137").Return(delivery.Delivered, nil)

	svc := newService(st, gen, gw, false)
	_, err := svc.IssueCode(context.Background(), "a@x.com")

	require.NoError(t, err)
	st.AssertExpectations(t)
}

func TestIssueCode_DeliveryFailed_RecordKept(t *testing.T) {
	st := &mockStore{}
	gen := &mockGenerator{}
	gw := &mockGateway{}

	gen.On("Generate").Return("042137", nil)
	st.On("Put", "a@x.com", mock.Anything).Return()
	gw.On("Send", mock.Anything, "a@x.com", "042137").
		Return(delivery.Failed, errors.New("smtp down"))

	svc := newService(st, gen, gw, false)
	res, err := svc.IssueCode(context.Background(), "a@x.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDeliveryFailed))
	assert.False(t, res.Delivered)
	// Put ran before Send: the record stays so a resend can replace it.
	st.AssertExpectations(t)
}

func TestIssueCode_DeliveryTimedOut(t *testing.T) {
	st := &mockStore{}
	gen := &mockGenerator{}
	gw := &mockGateway{}

	gen.On("Generate").Return("042137", nil)
	st.On("Put", "a@x.com", mock.Anything).Return()
	gw.On("Send", mock.Anything, "a@x.com", "042137").
		Return(delivery.TimedOut, context.DeadlineExceeded)

	svc := newService(st, gen, gw, false)
	_, err := svc.IssueCode(context.Background(), "a@x.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDeliveryTimeout))
}

func TestIssueCode_EchoMode_ReturnsCode(t *testing.T) {
	st := &mockStore{}
	gen := &mockGenerator{}
	gw := &mockGateway{}

	gen.On("Generate").Return("042137", nil)
	st.On("Put", "a@x.com", mock.Anything).Return()
	gw.On("Send", mock.Anything, "a@x.com", "042137").Return(delivery.Delivered, nil)

	svc := newService(st, gen, gw, true)
	res, err := svc.IssueCode(context.Background(), "a@x.com")

	require.NoError(t, err)
	assert.Equal(t, "042137", res.Code)
}

// --- Verify ---

func TestVerify_EmptyIdentity(t *testing.T) {
	svc := newService(nil, nil, nil, false)
	_, err := svc.Verify(context.Background(), "", "123456")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestVerify_FormatRejection_StoreUntouched(t *testing.T) {
	st := &mockStore{} // no expectations: any store call fails the test
	svc := newService(st, nil, nil, false)

	for _, candidate := range []string{"12a456", "12345", "1234567", "", "12 456"} {
		_, err := svc.Verify(context.Background(), "a@x.com", candidate)
		require.Error(t, err, "candidate %q", candidate)
		assert.True(t, errors.Is(err, domain.ErrBadRequest), "candidate %q", candidate)
	}
	st.AssertExpectations(t)
}

func TestVerify_OutcomePassthrough(t *testing.T) {
	for _, want := range []domain.VerifyOutcome{
		domain.VerifyValid,
		domain.VerifyNotFound,
		domain.VerifyExpired,
		domain.VerifyMismatch,
	} {
		st := &mockStore{}
		st.On("ConsumeIfValid", "a@x.com", "123456").Return(want)

		svc := newService(st, nil, nil, false)
		got, err := svc.Verify(context.Background(), "A@X.com", "123456")

		require.NoError(t, err)
		assert.Equal(t, want, got)
		st.AssertExpectations(t)
	}
}

// --- end to end against the real store and generator ---

type captureChannel struct{ code string }

func (c *captureChannel) Transmit(_ context.Context, _, code string) error {
	c.code = code
	return nil
}

func TestEndToEnd_IssueThenVerify(t *testing.T) {
	store := otp.NewStore(otp.DefaultMaxAttempts)
	channel := &captureChannel{}
	svc := NewService(ServiceDeps{
		Store:     store,
		Generator: otp.NewCodeGenerator(),
		Gateway:   delivery.NewGateway(channel, time.Second),
		TTL:       10 * time.Minute,
	})

	res, err := svc.IssueCode(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.True(t, res.Delivered)
	require.Regexp(t, `^[0-9]{6}$`, channel.code)

	outcome, err := svc.Verify(context.Background(), "a@x.com", channel.code)
	require.NoError(t, err)
	assert.Equal(t, domain.VerifyValid, outcome)

	// Single use: the same code can never verify twice.
	outcome, err = svc.Verify(context.Background(), "a@x.com", channel.code)
	require.NoError(t, err)
	assert.Equal(t, domain.VerifyNotFound, outcome)
}

func TestEndToEnd_MismatchThenCorrect(t *testing.T) {
	store := otp.NewStore(otp.DefaultMaxAttempts)
	channel := &captureChannel{}
	svc := NewService(ServiceDeps{
		Store:     store,
		Generator: otp.NewCodeGenerator(),
		Gateway:   delivery.NewGateway(channel, time.Second),
		TTL:       10 * time.Minute,
	})

	_, err := svc.IssueCode(context.Background(), "a@x.com")
	require.NoError(t, err)

	wrong := "000000"
	if channel.code == wrong {
		wrong = "000001"
	}

	outcome, err := svc.Verify(context.Background(), "a@x.com", wrong)
	require.NoError(t, err)
	assert.Equal(t, domain.VerifyMismatch, outcome)

	outcome, err = svc.Verify(context.Background(), "a@x.com", channel.code)
	require.NoError(t, err)
	assert.Equal(t, domain.VerifyValid, outcome)
}

func TestEndToEnd_ResendInvalidatesFirstCode(t *testing.T) {
	store := otp.NewStore(otp.DefaultMaxAttempts)
	channel := &captureChannel{}
	svc := NewService(ServiceDeps{
		Store:     store,
		Generator: otp.NewCodeGenerator(),
		Gateway:   delivery.NewGateway(channel, time.Second),
		TTL:       10 * time.Minute,
	})

	_, err := svc.IssueCode(context.Background(), "a@x.com")
	require.NoError(t, err)
	first := channel.code

	_, err = svc.IssueCode(context.Background(), "a@x.com")
	require.NoError(t, err)
	second := channel.code

	outcome, err := svc.Verify(context.Background(), "a@x.com", first)
	require.NoError(t, err)
	if first == second {
		// One-in-a-million collision: the "first" code is the live one.
		assert.Equal(t, domain.VerifyValid, outcome)
		return
	}
	assert.Equal(t, domain.VerifyMismatch, outcome)

	outcome, err = svc.Verify(context.Background(), "a@x.com", second)
	require.NoError(t, err)
	assert.Equal(t, domain.VerifyValid, outcome)
}
