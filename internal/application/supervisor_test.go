package application

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/bnema/minechat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testReadAddress  = "read:5000"
	testWriteAddress = "write:5050"
	identityReply    = `{"nickname": "steve", "account_hash": "abc"}`
)

func testSessionConfig() SessionConfig {
	return SessionConfig{
		ReadAddress:            testReadAddress,
		WriteAddress:           testWriteAddress,
		Backoff:                100 * time.Millisecond,
		WatchdogWindow:         5 * time.Second,
		KeepaliveInterval:      time.Hour,
		CredentialPollInterval: 10 * time.Millisecond,
	}
}

func countStatus(events []domain.StatusEvent, want domain.StatusEvent) int {
	n := 0
	for _, event := range events {
		if event == want {
			n++
		}
	}
	return n
}

func TestSupervisorRestartsSessionAfterReadFailure(t *testing.T) {
	dialer := &fakeDialer{connFor: func(address string, attempt int) (*fakeConn, error) {
		switch {
		case address == testReadAddress && attempt == 1:
			return newFakeConn().withReadErr(errors.New("connection reset by peer")), nil
		case address == testReadAddress:
			return newFakeConn(), nil
		default:
			return newFakeConn(greeting, identityReply), nil
		}
	}}
	queues := NewQueues()
	cfg := testSessionConfig()
	supervisor := NewSupervisor(cfg, dialer, queues, NewCredentialStore(domain.Credentials{Token: "abc"}), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(func() error { return supervisor.Run(ctx) })

	require.Eventually(t, func() bool {
		dials := dialer.Dials(testWriteAddress)
		return len(dials) == 2 && slices.Contains(dials[1].conn.Written(), "abc")
	}, 3*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, waitResult(t, done))

	readDials := dialer.Dials(testReadAddress)
	writeDials := dialer.Dials(testWriteAddress)
	require.Len(t, readDials, 2)
	assert.GreaterOrEqual(t, writeDials[1].at.Sub(readDials[0].at), cfg.Backoff)
	assert.True(t, readDials[0].conn.IsClosed())
	assert.True(t, writeDials[0].conn.IsClosed())

	events := drain(queues.Status)
	assert.Equal(t, 1, countStatus(events, domain.ReadStateChanged{State: domain.StateClosed}))
	assert.Equal(t, 1, countStatus(events, domain.SendStateChanged{State: domain.StateClosed}))
	assert.Equal(t, 2, countStatus(events, domain.ReadStateChanged{State: domain.StateInitiated}))

	closedAt := slices.Index(events, domain.StatusEvent(domain.ReadStateChanged{State: domain.StateClosed}))
	assert.Equal(t, domain.StatusEvent(domain.SendStateChanged{State: domain.StateClosed}), events[closedAt+1])
}

func TestSupervisorStopsOnMalformedReply(t *testing.T) {
	dialer := &fakeDialer{connFor: func(address string, _ int) (*fakeConn, error) {
		if address == testReadAddress {
			return newFakeConn(), nil
		}
		return newFakeConn(greeting, "this is not json"), nil
	}}
	queues := NewQueues()
	supervisor := NewSupervisor(testSessionConfig(), dialer, queues, NewCredentialStore(domain.Credentials{Token: "abc"}), nil, nil)

	err := waitResult(t, runAsync(func() error { return supervisor.Run(context.Background()) }))

	require.ErrorIs(t, err, domain.ErrMalformedReply)
	assert.Len(t, dialer.Dials(testWriteAddress), 1)
	assert.Equal(t, 0, countStatus(drain(queues.Status), domain.SendStateChanged{State: domain.StateClosed}))
}

func TestSupervisorRetriesAfterAuthorisationFailure(t *testing.T) {
	dialer := &fakeDialer{connFor: func(address string, attempt int) (*fakeConn, error) {
		switch {
		case address == testReadAddress:
			return newFakeConn(), nil
		case attempt == 1:
			return newFakeConn(greeting, "null"), nil
		default:
			return newFakeConn(greeting, identityReply), nil
		}
	}}
	queues := NewQueues()
	supervisor := NewSupervisor(testSessionConfig(), dialer, queues, NewCredentialStore(domain.Credentials{Token: "abc"}), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(func() error { return supervisor.Run(ctx) })

	require.Eventually(t, func() bool {
		return countStatus(queueSnapshot(queues), domain.SendStateChanged{State: domain.StateEstablished}) == 1
	}, 3*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, waitResult(t, done))

	assert.Len(t, dialer.Dials(testWriteAddress), 2)
}

func TestSupervisorRestartsWhenWatchdogStarves(t *testing.T) {
	dialer := &fakeDialer{connFor: func(address string, _ int) (*fakeConn, error) {
		if address == testReadAddress {
			return newFakeConn(), nil
		}
		return newFakeConn("Welcome back!"), nil
	}}
	cfg := testSessionConfig()
	cfg.WatchdogWindow = 50 * time.Millisecond
	cfg.Backoff = 50 * time.Millisecond
	supervisor := NewSupervisor(cfg, dialer, NewQueues(), NewCredentialStore(domain.Credentials{}), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(func() error { return supervisor.Run(ctx) })

	require.Eventually(t, func() bool { return len(dialer.Dials(testWriteAddress)) >= 2 }, 3*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, waitResult(t, done))

	dials := dialer.Dials(testWriteAddress)
	gap := dials[1].at.Sub(dials[0].at)
	assert.GreaterOrEqual(t, gap, cfg.Backoff)
}

func TestSupervisorKeepaliveHoldsIdleSessionOpen(t *testing.T) {
	dialer := &fakeDialer{connFor: func(address string, _ int) (*fakeConn, error) {
		if address == testReadAddress {
			return newFakeConn(), nil
		}
		return newFakeConn("Welcome back!"), nil
	}}
	cfg := testSessionConfig()
	cfg.WatchdogWindow = 150 * time.Millisecond
	cfg.KeepaliveInterval = 30 * time.Millisecond
	supervisor := NewSupervisor(cfg, dialer, NewQueues(), NewCredentialStore(domain.Credentials{}), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(func() error { return supervisor.Run(ctx) })

	time.Sleep(4 * cfg.WatchdogWindow)
	cancel()
	require.NoError(t, waitResult(t, done))

	dials := dialer.Dials(testWriteAddress)
	require.Len(t, dials, 1)
	assert.GreaterOrEqual(t, len(dials[0].conn.Written()), 8)
}

func TestSupervisorCredentialChangeForcesExactlyOneRestart(t *testing.T) {
	dialer := &fakeDialer{connFor: func(address string, _ int) (*fakeConn, error) {
		if address == testReadAddress {
			return newFakeConn(), nil
		}
		return newFakeConn(greeting, identityReply), nil
	}}
	queues := NewQueues()
	store := NewCredentialStore(domain.Credentials{Token: "abc"})
	queues.Credentials.Put(domain.NicknameChanged{Nickname: "alex"})
	supervisor := NewSupervisor(testSessionConfig(), dialer, queues, store, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(func() error { return supervisor.Run(ctx) })

	require.Eventually(t, func() bool { return len(dialer.Dials(testWriteAddress)) == 2 }, 3*time.Second, 5*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	cancel()
	require.NoError(t, waitResult(t, done))

	assert.Len(t, dialer.Dials(testWriteAddress), 2)
	assert.Equal(t, "alex", store.Credentials().Nickname)
	assert.Equal(t, 1, countStatus(drain(queues.Status), domain.ReadStateChanged{State: domain.StateClosed}))
}

func TestSupervisorReturnsNilWhenCancelledDuringBackoff(t *testing.T) {
	dialer := &fakeDialer{connFor: func(string, int) (*fakeConn, error) {
		return nil, errors.New("connection refused")
	}}
	cfg := testSessionConfig()
	cfg.Backoff = time.Hour
	queues := NewQueues()
	supervisor := NewSupervisor(cfg, dialer, queues, NewCredentialStore(domain.Credentials{}), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(func() error { return supervisor.Run(ctx) })

	require.Eventually(t, func() bool {
		return countStatus(queueSnapshot(queues), domain.SendStateChanged{State: domain.StateClosed}) == 1
	}, 2*time.Second, 5*time.Millisecond)
	cancel()

	require.NoError(t, waitResult(t, done))
}

// queueSnapshot drains the status queue and puts the events back.
func queueSnapshot(queues Queues) []domain.StatusEvent {
	events := drain(queues.Status)
	for _, event := range events {
		queues.Status.Put(event)
	}
	return events
}

func TestGenerationResultTreatsCleanExitAsRestart(t *testing.T) {
	err := generationResult(nil)

	require.ErrorIs(t, err, errSessionEnded)
	assert.False(t, domain.IsFatal(err))
	assert.Equal(t, domain.ErrConnectionLost, generationResult(domain.ErrConnectionLost))
}
