package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch_OrderAndPayload(t *testing.T) {
	d := NewDispatcher()
	var got []string

	d.Listen(AppReady, func(e Event) error {
		got = append(got, "first:"+e.Payload["stage"].(string))
		return nil
	})
	d.Listen(AppReady, func(e Event) error {
		got = append(got, "second")
		return nil
	})

	require.NoError(t, d.Dispatch(AppReady, map[string]any{"stage": "testing"}))
	assert.Equal(t, []string{"first:testing", "second"}, got)
	assert.Equal(t, 1, d.Fired(AppReady))
}

func TestDispatch_Wildcards(t *testing.T) {
	d := NewDispatcher()
	var cleared []string
	var all int

	d.Listen("cache.*.clear", func(e Event) error {
		cleared = append(cleared, e.Name)
		return nil
	})
	d.Listen("*", func(e Event) error {
		all++
		return nil
	})

	require.NoError(t, d.Dispatch(CacheClear("manifests"), nil))
	require.NoError(t, d.Dispatch(CacheClear("container"), nil))
	require.NoError(t, d.Dispatch(AppConfig, nil))

	assert.Equal(t, []string{"cache.manifests.clear", "cache.container.clear"}, cleared)
	assert.Equal(t, 3, all)
	assert.True(t, d.HasListeners("cache.app.clear"))
	assert.True(t, d.HasListeners("anything"))
}

func TestDispatch_ErrorStopsDelivery(t *testing.T) {
	d := NewDispatcher()
	boom := errors.New("boom")
	var reached bool

	d.Listen(AppProviders, func(Event) error { return boom })
	d.Listen(AppProviders, func(Event) error {
		reached = true
		return nil
	})

	err := d.Dispatch(AppProviders, nil)
	assert.ErrorIs(t, err, boom)
	assert.False(t, reached)
}

func TestDispatch_RecoversPanics(t *testing.T) {
	d := NewDispatcher()
	d.Listen(AppContainer, func(Event) error { panic("kaboom") })

	err := d.Dispatch(AppContainer, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestListen_Unsubscribe(t *testing.T) {
	d := NewDispatcher()
	var calls int
	stop := d.Listen(ConsoleStart, func(Event) error {
		calls++
		return nil
	})

	require.NoError(t, d.Dispatch(ConsoleStart, nil))
	stop()
	require.NoError(t, d.Dispatch(ConsoleStart, nil))

	assert.Equal(t, 1, calls)
	assert.False(t, d.HasListeners(ConsoleStart))
	assert.Equal(t, 2, d.Fired(ConsoleStart))
}

func TestListenerMayListenDuringDispatch(t *testing.T) {
	d := NewDispatcher()
	d.Listen(AppExtensions, func(Event) error {
		d.Listen(AppReady, func(Event) error { return nil })
		return nil
	})

	require.NoError(t, d.Dispatch(AppExtensions, nil))
	assert.True(t, d.HasListeners(AppReady))
}

func TestEventNames(t *testing.T) {
	assert.Equal(t, "mail.registered", ProviderRegistered("mail"))
	assert.Equal(t, "mail.loaded", ProviderLoaded("mail"))
	assert.Equal(t, "serve.start", CommandStart("serve"))
	assert.Equal(t, "serve.finish", CommandFinish("serve"))
}
