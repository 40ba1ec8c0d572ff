package capsule

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedContainer(t *testing.T) (*Container, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)

	return New(WithLogger(zap.New(core))), logs
}

func TestLogging_RegistrationOverwriteWarns(t *testing.T) {
	c, logs := newObservedContainer(t)

	RegisterType[paymentGateway, *paypalGateway](c)
	assert.Empty(t, logs.FilterMessage("registration overwritten").All())

	RegisterType[paymentGateway, *stripeGateway](c)

	entries := logs.FilterMessage("registration overwritten").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, "capsule.paymentGateway", entries[0].ContextMap()["service"])
}

func TestLogging_ResolveAllSkipWarns(t *testing.T) {
	c, logs := newObservedContainer(t)

	RegisterType[paymentGateway, *defaultGateway](c)
	RegisterKeyedFunc[paymentGateway](c, "broken", func() (paymentGateway, error) {
		return nil, errors.New("gateway offline")
	})

	all := c.ResolveAll(TypeOf[paymentGateway]())
	assert.Len(t, all, 1)

	entries := logs.FilterMessage("skipping unresolvable registration").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
}

func TestLogging_ScopeDisposalFailureWarns(t *testing.T) {
	c, logs := newObservedContainer(t)

	RegisterFunc[*disposer](c, func() *disposer {
		return &disposer{err: errors.New("close failed")}
	}, Scoped())

	c.BeginScope(nil)

	_, err := Resolve[*disposer](c)
	require.NoError(t, err)

	c.EndScope()

	entries := logs.FilterMessage("scope disposal failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
}

func TestLogging_RegistrationDebug(t *testing.T) {
	c, logs := newObservedContainer(t)

	RegisterType[logSink, *memorySink](c, Singleton())

	entries := logs.FilterMessage("service registered").All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "capsule.logSink", fields["service"])
	assert.Equal(t, "singleton", fields["lifetime"])
	assert.Equal(t, "type", fields["strategy"])
}
