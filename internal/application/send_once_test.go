package application

import (
	"context"
	"testing"

	"github.com/bnema/minechat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendOnceRegistersAndSubmitsMessages(t *testing.T) {
	conn := newFakeConn(greeting, "Enter preferred nickname below:", `{"nickname": "alex", "account_hash": "h-1"}`)
	dialer := staticDialer(map[string]*fakeConn{testWriteAddress: conn})

	identity, err := SendOnce(context.Background(), dialer, testWriteAddress, domain.Credentials{Nickname: "alex"}, []string{"hello", "bye"}, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.Identity{Nickname: "alex", AccountHash: "h-1"}, identity)
	assert.Equal(t, []string{"", "alex", "hello", "", "bye", ""}, conn.Written())
	assert.True(t, conn.IsClosed())
}

func TestSendOnceRequiresCredentials(t *testing.T) {
	_, err := SendOnce(context.Background(), staticDialer(nil), testWriteAddress, domain.Credentials{}, []string{"hello"}, nil, nil)

	require.ErrorIs(t, err, ErrCredentialsRequired)
}

func TestSendOnceReportsRejectedToken(t *testing.T) {
	conn := newFakeConn(greeting, "null")
	dialer := staticDialer(map[string]*fakeConn{testWriteAddress: conn})

	_, err := SendOnce(context.Background(), dialer, testWriteAddress, domain.Credentials{Token: "broken"}, []string{"hello"}, nil, nil)

	require.ErrorIs(t, err, domain.ErrAuthorisation)
	assert.Equal(t, []string{"broken"}, conn.Written())
}

func TestSendOnceReportsProgress(t *testing.T) {
	conn := newFakeConn(greeting, `{"nickname": "steve", "account_hash": "abc"}`)
	dialer := staticDialer(map[string]*fakeConn{testWriteAddress: conn})

	var reports []SendProgress
	_, err := SendOnce(context.Background(), dialer, testWriteAddress, domain.Credentials{Token: "abc"}, []string{"one", "two"},
		func(p SendProgress) { reports = append(reports, p) }, nil)

	require.NoError(t, err)
	assert.Equal(t, []SendProgress{
		{Stage: SendConnecting, Total: 2},
		{Stage: SendIdentifying, Total: 2},
		{Stage: SendSubmitting, Current: 1, Total: 2, Nickname: "steve"},
		{Stage: SendSubmitting, Current: 2, Total: 2, Nickname: "steve"},
	}, reports)
}

func TestSendOnceSkipsIdentifyingWithoutMarker(t *testing.T) {
	conn := newFakeConn("Welcome back!")
	dialer := staticDialer(map[string]*fakeConn{testWriteAddress: conn})

	var stages []SendStage
	_, err := SendOnce(context.Background(), dialer, testWriteAddress, domain.Credentials{Token: "abc"}, []string{"one"},
		func(p SendProgress) { stages = append(stages, p.Stage) }, nil)

	require.NoError(t, err)
	assert.Equal(t, []SendStage{SendConnecting, SendSubmitting}, stages)
	assert.Equal(t, []string{"one", ""}, conn.Written())
}
