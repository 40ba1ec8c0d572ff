package capsule

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Shared test fixtures.

type logSink interface {
	Log(line string)
}

type memorySink struct {
	lines []string
}

func (m *memorySink) Log(line string) {
	m.lines = append(m.lines, line)
}

type paymentGateway interface {
	Charge(amount int) string
}

type paypalGateway struct{}

func (*paypalGateway) Charge(amount int) string { return fmt.Sprintf("paypal:%d", amount) }

type stripeGateway struct{}

func (*stripeGateway) Charge(amount int) string { return fmt.Sprintf("stripe:%d", amount) }

type defaultGateway struct{}

func (*defaultGateway) Charge(amount int) string { return fmt.Sprintf("default:%d", amount) }

type userRepository struct {
	Sink logSink `inject:""`
}

type userService struct {
	Repo *userRepository `inject:""`
}

type disposer struct {
	disposed bool
	err      error
}

func (d *disposer) Dispose() error {
	d.disposed = true

	return d.err
}

type chainA struct{ B *chainB }

type chainB struct{ A *chainA }

func TestContainer_TransientReturnsDistinctInstances(t *testing.T) {
	c := New()
	RegisterType[*memorySink, *memorySink](c)

	first, err := Resolve[*memorySink](c)
	require.NoError(t, err)

	second, err := Resolve[*memorySink](c)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
}

func TestContainer_SingletonReturnsSameInstance(t *testing.T) {
	c := New()
	callCount := 0

	RegisterFunc[*memorySink](c, func() *memorySink {
		callCount++

		return &memorySink{}
	}, Singleton())

	first, err := Resolve[*memorySink](c)
	require.NoError(t, err)

	second, err := Resolve[*memorySink](c)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, callCount)
}

func TestContainer_ScopedSameWithinScope(t *testing.T) {
	c := New()
	callCount := 0

	RegisterFunc[*memorySink](c, func() *memorySink {
		callCount++

		return &memorySink{}
	}, Scoped())

	c.BeginScope(nil)
	defer c.EndScope()

	first, err := Resolve[*memorySink](c)
	require.NoError(t, err)

	second, err := Resolve[*memorySink](c)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, callCount)
}

func TestContainer_ScopedDiffersAcrossScopes(t *testing.T) {
	c := New()
	RegisterType[*memorySink, *memorySink](c, Scoped())

	c.BeginScope(nil)
	first, err := Resolve[*memorySink](c)
	require.NoError(t, err)
	c.EndScope()

	c.BeginScope(nil)
	second, err := Resolve[*memorySink](c)
	require.NoError(t, err)
	c.EndScope()

	assert.NotSame(t, first, second)
}

func TestContainer_ScopedWithoutScopeFails(t *testing.T) {
	c := New()
	RegisterType[*memorySink, *memorySink](c, Scoped())

	_, err := Resolve[*memorySink](c)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoActiveScope)

	var scopeErr *ScopeError
	require.ErrorAs(t, err, &scopeErr)
	assert.Contains(t, scopeErr.Reason, "memorySink")

	// The same resolution succeeds once a scope is current.
	c.BeginScope(nil)
	defer c.EndScope()

	_, err = Resolve[*memorySink](c)
	assert.NoError(t, err)
}

func TestContainer_MissingDependencyReferencesMissingType(t *testing.T) {
	c := New()
	RegisterType[*userService, *userService](c)
	RegisterType[*userRepository, *userRepository](c)
	// logSink is deliberately not registered.

	_, err := Resolve[*userService](c)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotRegistered)

	var notRegistered *NotRegisteredError
	require.ErrorAs(t, err, &notRegistered)
	assert.Equal(t, TypeOf[logSink](), notRegistered.Service)
}

func TestContainer_CircularDependencyFails(t *testing.T) {
	c := New()

	RegisterFunc[*chainA](c, func(b *chainB) *chainA {
		return &chainA{B: b}
	})
	RegisterFunc[*chainB](c, func(a *chainA) *chainB {
		return &chainB{A: a}
	})

	_, err := Resolve[*chainA](c)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircularDependency)

	var circular *CircularDependencyError
	require.ErrorAs(t, err, &circular)
	assert.Contains(t, circular.Chain, TypeOf[*chainA]().String())
	assert.Contains(t, circular.Chain, TypeOf[*chainB]().String())
	// The chain runs from the origin down to the repeated key.
	assert.Equal(t, circular.Chain[0], circular.Chain[len(circular.Chain)-1])

	// The failure leaves no stale cycle-detection state behind.
	RegisterType[*memorySink, *memorySink](c)

	_, err = Resolve[*memorySink](c)
	assert.NoError(t, err)
}

func TestContainer_KeyedRegistrationsAreIndependent(t *testing.T) {
	c := New()

	RegisterKeyedType[paymentGateway, *paypalGateway](c, "paypal", Singleton())
	RegisterKeyedType[paymentGateway, *stripeGateway](c, "stripe", Singleton())
	RegisterType[paymentGateway, *defaultGateway](c, Singleton())

	paypal, err := ResolveKeyed[paymentGateway](c, "paypal")
	require.NoError(t, err)
	assert.Equal(t, "paypal:5", paypal.Charge(5))

	stripe, err := ResolveKeyed[paymentGateway](c, "stripe")
	require.NoError(t, err)
	assert.Equal(t, "stripe:5", stripe.Charge(5))

	unkeyed, err := Resolve[paymentGateway](c)
	require.NoError(t, err)
	assert.Equal(t, "default:5", unkeyed.Charge(5))

	// Three independent singleton cache entries.
	paypalAgain, err := ResolveKeyed[paymentGateway](c, "paypal")
	require.NoError(t, err)
	assert.Same(t, paypal, paypalAgain)
	assert.NotSame(t, paypal, stripe)

	all := All[paymentGateway](c)
	assert.Len(t, all, 3)
}

func TestContainer_ResolveAllSkipsFailingRegistrations(t *testing.T) {
	c := New()

	RegisterType[paymentGateway, *defaultGateway](c)
	RegisterKeyedFunc[paymentGateway](c, "broken", func() (paymentGateway, error) {
		return nil, errors.New("gateway offline")
	})

	all := c.ResolveAll(TypeOf[paymentGateway]())
	assert.Len(t, all, 1)
}

func TestContainer_TryResolve(t *testing.T) {
	c := New()

	// Not registered: absent result, no error.
	_, ok, err := TryResolve[*memorySink](c)
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = TryResolveKeyed[paymentGateway](c, "missing")
	assert.NoError(t, err)
	assert.False(t, ok)

	RegisterType[*memorySink, *memorySink](c)

	sink, ok, err := TryResolve[*memorySink](c)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NotNil(t, sink)

	// Failure kinds other than not-registered still propagate.
	RegisterType[*userRepository, *userRepository](c, Scoped())

	_, ok, err = TryResolve[*userRepository](c)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNoActiveScope)
}

func TestContainer_LastRegistrationWins(t *testing.T) {
	c := New()

	RegisterType[paymentGateway, *paypalGateway](c)
	RegisterType[paymentGateway, *stripeGateway](c)

	gateway, err := Resolve[paymentGateway](c)
	require.NoError(t, err)
	assert.Equal(t, "stripe:1", gateway.Charge(1))
}

func TestContainer_RegisterInstance(t *testing.T) {
	c := New()
	sink := &memorySink{}

	RegisterValue[logSink](c, sink)

	resolved, err := Resolve[logSink](c)
	require.NoError(t, err)
	assert.Same(t, sink, resolved)
}

func TestContainer_SelfRegistration(t *testing.T) {
	c := New()

	// A nil implementation type registers the service type to itself.
	c.Register(TypeOf[*memorySink](), nil)

	sink, err := Resolve[*memorySink](c)
	require.NoError(t, err)
	assert.NotNil(t, sink)
}

func TestContainer_ClearResetsEverything(t *testing.T) {
	c := New()
	held := &disposer{}

	RegisterType[*memorySink, *memorySink](c, Singleton())
	RegisterKeyedType[paymentGateway, *paypalGateway](c, "paypal")
	RegisterFunc[*disposer](c, func() *disposer { return held }, Scoped())

	c.BeginScope(nil)

	first, err := Resolve[*memorySink](c)
	require.NoError(t, err)

	_, err = Resolve[*disposer](c)
	require.NoError(t, err)

	c.Clear()

	assert.False(t, c.IsRegistered(TypeOf[*memorySink]()))
	assert.False(t, c.IsRegisteredKeyed(TypeOf[paymentGateway](), "paypal"))
	assert.True(t, held.disposed)

	_, err = Resolve[*memorySink](c)
	assert.ErrorIs(t, err, ErrNotRegistered)

	// The container is usable again: a fresh registration yields a fresh
	// singleton, not the pre-Clear cache entry.
	RegisterType[*memorySink, *memorySink](c, Singleton())

	second, err := Resolve[*memorySink](c)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestContainer_IsRegistered(t *testing.T) {
	c := New()

	assert.False(t, c.IsRegistered(TypeOf[logSink]()))

	RegisterType[logSink, *memorySink](c)
	RegisterKeyedType[paymentGateway, *paypalGateway](c, "paypal")

	assert.True(t, c.IsRegistered(TypeOf[logSink]()))
	assert.True(t, c.IsRegisteredKeyed(TypeOf[paymentGateway](), "paypal"))
	assert.False(t, c.IsRegistered(TypeOf[paymentGateway]()))
}

func TestContainer_ConcurrentSingletonResolve(t *testing.T) {
	c := New()
	RegisterType[*memorySink, *memorySink](c, Singleton())

	const goroutines = 10

	var wg sync.WaitGroup

	values := make(chan *memorySink, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			sink, err := Resolve[*memorySink](c)
			assert.NoError(t, err)

			values <- sink
		}()
	}

	wg.Wait()
	close(values)

	// Every caller observes the same cached instance.
	var first *memorySink
	for sink := range values {
		if first == nil {
			first = sink
		} else {
			assert.Same(t, first, sink)
		}
	}
}

func TestContainer_ConcurrentRegisterAndResolve(t *testing.T) {
	c := New()
	RegisterType[*memorySink, *memorySink](c)

	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			if n%2 == 0 {
				RegisterKeyedType[paymentGateway, *paypalGateway](c, n)
			} else {
				_, err := Resolve[*memorySink](c)
				assert.NoError(t, err)
			}
		}(i)
	}

	wg.Wait()
}
