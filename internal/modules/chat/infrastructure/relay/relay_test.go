package relay

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	frames  []string
	failAt  int
	written int
}

func (s *recordingSink) Data(line string) error {
	s.written++
	if s.failAt > 0 && s.written >= s.failAt {
		return errors.New("broken pipe")
	}
	s.frames = append(s.frames, line)
	return nil
}

func (s *recordingSink) Done() error {
	s.frames = append(s.frames, DoneMarker)
	return nil
}

func (s *recordingSink) Fail(message string) error {
	s.frames = append(s.frames, "error:"+message)
	return nil
}

func TestRelayForwardsInOrderWithSingleDone(t *testing.T) {
	upstream := "data: {\"c\":1}\n\n" +
		": keep-alive\n" +
		"data: {\"c\":2}\r\n\r\n" +
		"data: [DONE]\n\n"
	sink := &recordingSink{}

	require.NoError(t, Relay(context.Background(), strings.NewReader(upstream), sink))
	assert.Equal(t, []string{`data: {"c":1}`, `data: {"c":2}`, DoneMarker}, sink.frames)
}

func TestRelayDoneThenCloseEmitsOneDone(t *testing.T) {
	sink := &recordingSink{}
	g := NewGuard(sink)

	require.NoError(t, Relay(context.Background(), strings.NewReader("data: a\n\ndata: b\n\ndata: [DONE]\n\n"), g))
	// 连接关闭时再次结束
	require.NoError(t, g.Done())

	assert.Equal(t, []string{"data: a", "data: b", DoneMarker}, sink.frames)
	assert.True(t, g.Terminated())
}

func TestRelayEOFWithoutDoneStillTerminates(t *testing.T) {
	sink := &recordingSink{}
	require.NoError(t, Relay(context.Background(), strings.NewReader("data: only\n\ndata: tail-without-newline"), sink))
	assert.Equal(t, []string{"data: only", "data: tail-without-newline", DoneMarker}, sink.frames)
}

func TestRelayKeepsPayloadVerbatim(t *testing.T) {
	sink := &recordingSink{}
	require.NoError(t, Relay(context.Background(), strings.NewReader("data:  two-spaces\ndata:{\"x\":1}\n"), sink))
	assert.Equal(t, []string{"data:  two-spaces", `data:{"x":1}`, DoneMarker}, sink.frames)
}

func TestPayload(t *testing.T) {
	for line, want := range map[string]string{
		`data:{"x":1}`:      `{"x":1}`,
		`data: {"x":1}`:     `{"x":1}`,
		"data:  two-spaces": " two-spaces",
		"data: [DONE]":      DoneMarker,
	} {
		got, ok := Payload(line)
		assert.True(t, ok, line)
		assert.Equal(t, want, got, line)
	}
	for _, line := range []string{"", ": keep-alive", "event: ping", "data:", "data: "} {
		_, ok := Payload(line)
		assert.False(t, ok, line)
	}
}

type failingReader struct {
	data string
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.done {
		r.done = true
		return copy(p, r.data), nil
	}
	return 0, errors.New("connection reset by peer")
}

func TestRelayUpstreamErrorSendsErrorFrame(t *testing.T) {
	sink := &recordingSink{}
	err := Relay(context.Background(), &failingReader{data: "data: part\n\n"}, sink)
	require.Error(t, err)
	assert.Equal(t, []string{"data: part", "error:connection reset by peer"}, sink.frames)
}

func TestRelayStopsWhenDownstreamBreaks(t *testing.T) {
	sink := &recordingSink{failAt: 2}
	err := Relay(context.Background(), strings.NewReader("data: 1\ndata: 2\ndata: 3\ndata: 4\n"), sink)
	require.Error(t, err)
	assert.Equal(t, []string{"data: 1"}, sink.frames)
}

func TestRelayCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := &recordingSink{}
	err := Relay(ctx, strings.NewReader("data: x\n"), sink)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sink.frames)
}

func TestGuardDropsFramesAfterFail(t *testing.T) {
	sink := &recordingSink{}
	g := NewGuard(sink)
	require.NoError(t, g.Fail("boom"))
	require.NoError(t, g.Data("late"))
	require.NoError(t, g.Done())
	assert.Equal(t, []string{"error:boom"}, sink.frames)
}
