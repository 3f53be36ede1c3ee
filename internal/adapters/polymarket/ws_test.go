package polymarket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	frames   [][]byte
	i        int
	readErr  error
	writeErr error
	closed   bool
}

func (f *fakeConn) WriteJSON(any) error { return f.writeErr }

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	if f.i < len(f.frames) {
		msg := f.frames[f.i]
		f.i++
		return 1, msg, nil
	}
	if f.readErr != nil {
		return 0, nil, f.readErr
	}
	return 0, nil, errors.New("eof")
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func TestListener_DeliversUpdates(t *testing.T) {
	conn := &fakeConn{frames: [][]byte{
		[]byte(`[{"asset_id": "tok-1", "price": "0.48", "event_type": "price_change"}]`),
		[]byte(`{"asset_id": "tok-2", "price": "0.32", "event_type": "price_change"}`),
		[]byte(`{"not": "an update"}`),
	}}

	var got []PriceUpdate
	l := NewListener("ws://test", []string{"tok-1", "tok-2"}, func(u PriceUpdate) {
		got = append(got, u)
	})
	l.dial = func(context.Context, string) (wsConn, error) { return conn, nil }

	healthy, err := l.listen(context.Background())
	require.Error(t, err, "el stream termina con el eof del fake")
	assert.True(t, healthy)
	assert.True(t, conn.closed)

	require.Len(t, got, 2, "frames sin asset_id se ignoran")
	assert.Equal(t, "tok-1", got[0].AssetID)
	assert.Equal(t, "0.32", got[1].Price)
}

func TestListener_GivesUpAfterConsecutiveFailures(t *testing.T) {
	dials := 0
	l := NewListener("ws://test", nil, nil)
	l.dial = func(context.Context, string) (wsConn, error) {
		dials++
		return nil, errors.New("connection refused")
	}

	l.backoffBase = time.Millisecond

	err := l.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "giving up")
	assert.Equal(t, wsMaxFailures, dials)
}

func TestListener_StopsOnContextCancel(t *testing.T) {
	l := NewListener("ws://test", nil, nil)
	l.dial = func(ctx context.Context, _ string) (wsConn, error) {
		return nil, ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, l.Run(ctx))
}

func TestBackoff_ExponentialWithCap(t *testing.T) {
	assert.Equal(t, 1*time.Second, backoff(time.Second, 1))
	assert.Equal(t, 2*time.Second, backoff(time.Second, 2))
	assert.Equal(t, 16*time.Second, backoff(time.Second, 5))
	assert.Equal(t, 60*time.Second, backoff(time.Second, 7))
	assert.Equal(t, 60*time.Second, backoff(time.Second, 40))
}
