package publisher

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/okian/duelwall/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type mockConn struct {
	mock.Mock
}

func (m *mockConn) Publish(subject string, data []byte) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func (m *mockConn) Close() {
	m.Called()
}

func TestPublishEncodesJSON(t *testing.T) {
	c := new(mockConn)
	c.On("Publish", "duelwall.duel.7.recorded", []byte(`{"id":7,"outcome":"a"}`)).Return(nil).Once()

	p := newPublisher(c, logger.Get())
	err := p.Publish(context.Background(), SubjectDuelRecorded(7), map[string]any{"id": 7, "outcome": "a"})

	require.NoError(t, err)
	c.AssertExpectations(t)
}

func TestPublishWrapsBrokerErrors(t *testing.T) {
	down := errors.New("connection closed")
	c := new(mockConn)
	c.On("Publish", SubjectRosterChanged, mock.Anything).Return(down)

	p := newPublisher(c, logger.Get())
	err := p.Publish(context.Background(), SubjectRosterChanged, struct{}{})

	assert.ErrorIs(t, err, down)
	assert.Contains(t, err.Error(), SubjectRosterChanged)
}

func TestPublishRejectsUnencodablePayload(t *testing.T) {
	c := new(mockConn)
	p := newPublisher(c, logger.Get())

	err := p.Publish(context.Background(), SubjectWallRefreshed, make(chan int))

	assert.Error(t, err)
	c.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestClose(t *testing.T) {
	c := new(mockConn)
	c.On("Close").Return().Once()

	newPublisher(c, logger.Get()).Close()

	c.AssertExpectations(t)
}

func TestSubjectKind(t *testing.T) {
	assert.Equal(t, "duel.recorded", subjectKind(SubjectDuelRecorded(42)))
	assert.Equal(t, "roster.changed", subjectKind(SubjectRosterChanged))
	assert.Equal(t, "wall.refreshed", subjectKind(SubjectWallRefreshed))
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), SubjectRosterChanged, nil))
	p.Close()
}
