package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsStartReplaces(t *testing.T) {
	ss := NewSessions()

	ss.Start(1, FlowRegister, stepAwaitingImage)
	ss.Start(1, FlowEdit, stepAwaitingCode)

	sess := ss.Get(1)
	require.NotNil(t, sess)
	assert.Equal(t, FlowEdit, sess.Flow)
	assert.Equal(t, 1, ss.Len())
}

func TestSessionsDelete(t *testing.T) {
	ss := NewSessions()

	assert.False(t, ss.Delete(1))
	ss.Start(1, FlowRegister, stepAwaitingImage)
	assert.True(t, ss.Delete(1))
	assert.Nil(t, ss.Get(1))
}

func TestSessionsPrune(t *testing.T) {
	ss := NewSessions()

	stale := ss.Start(1, FlowRegister, stepAwaitingImage)
	stale.LastEvent = time.Now().Add(-time.Hour)
	ss.Start(2, FlowEdit, stepAwaitingCode)

	assert.Equal(t, 1, ss.Prune(30*time.Minute))
	assert.Nil(t, ss.Get(1))
	assert.NotNil(t, ss.Get(2))
}

func TestSessionsGetTouches(t *testing.T) {
	ss := NewSessions()

	sess := ss.Start(1, FlowRegister, stepAwaitingImage)
	sess.LastEvent = time.Now().Add(-time.Hour)

	ss.Get(1)
	assert.Equal(t, 0, ss.Prune(30*time.Minute))
}
