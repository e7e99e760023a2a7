package container

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mailer struct {
	driver string
	tags   []string
}

func TestBuild_LaterSetsWin(t *testing.T) {
	b := NewBuilder()
	b.AddDefinitions("internal", Definitions{"driver": Value("smtp"), "name": Value("soma")})
	b.AddDefinitions("mail-provider", Definitions{"driver": Value("ses")})

	c, err := b.Build()
	require.NoError(t, err)

	driver, err := c.Get("driver")
	require.NoError(t, err)
	assert.Equal(t, "ses", driver)
	assert.Equal(t, "mail-provider", c.Source("driver"))
	assert.Equal(t, "internal", c.Source("name"))
	assert.Equal(t, []string{"driver", "name"}, c.IDs())
}

func TestBuild_Once(t *testing.T) {
	b := NewBuilder()
	_, err := b.Build()
	require.NoError(t, err)
	assert.True(t, b.IsBuilt())

	_, err = b.Build()
	assert.ErrorIs(t, err, ErrAlreadyBuilt)
}

func TestSingletonTransientAndMake(t *testing.T) {
	var built int
	factory := func(c *Container) (any, error) {
		built++
		return &mailer{driver: "smtp"}, nil
	}

	b := NewBuilder().AddDefinitions("test", Definitions{
		"shared": Singleton(factory),
		"fresh":  Transient(factory),
	})
	c, err := b.Build()
	require.NoError(t, err)

	s1, err := c.Get("shared")
	require.NoError(t, err)
	s2, err := c.Get("shared")
	require.NoError(t, err)
	assert.Same(t, s1, s2)
	assert.Equal(t, 1, built)

	made, err := c.Make("shared")
	require.NoError(t, err)
	assert.NotSame(t, s1, made)

	f1, err := c.Get("fresh")
	require.NoError(t, err)
	f2, err := c.Get("fresh")
	require.NoError(t, err)
	assert.NotSame(t, f1, f2)
	assert.Equal(t, 4, built)
}

func TestFactoriesResolveDependencies(t *testing.T) {
	c, err := NewBuilder().AddDefinitions("test", Definitions{
		"driver": Value("ses"),
		"mailer": Singleton(func(c *Container) (any, error) {
			driver, err := Resolve[string](c, "driver")
			if err != nil {
				return nil, err
			}
			return &mailer{driver: driver}, nil
		}),
		"mail": Ref("mailer"),
	}).Build()
	require.NoError(t, err)

	m, err := Resolve[*mailer](c, "mail")
	require.NoError(t, err)
	assert.Equal(t, "ses", m.driver)

	direct, err := c.Get("mailer")
	require.NoError(t, err)
	assert.Same(t, m, direct)
}

func TestResolve_TypeMismatch(t *testing.T) {
	c, err := NewBuilder().AddDefinitions("test", Definitions{"n": Value(1)}).Build()
	require.NoError(t, err)

	_, err = Resolve[string](c, "n")
	assert.Error(t, err)
}

func TestNotFound(t *testing.T) {
	c, err := NewBuilder().Build()
	require.NoError(t, err)

	_, err = c.Get("missing")
	assert.True(t, IsNotFound(err))
	assert.False(t, c.Has("missing"))
}

func TestCycleDetection(t *testing.T) {
	c, err := NewBuilder().AddDefinitions("test", Definitions{
		"a": Singleton(func(c *Container) (any, error) { return c.Get("b") }),
		"b": Singleton(func(c *Container) (any, error) { return c.Get("a") }),
	}).Build()
	require.NoError(t, err)

	_, err = c.Get("a")
	require.Error(t, err)
	assert.True(t, IsCycle(err))

	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"a", "b", "a"}, cycle.Chain)
}

func TestFactoryError(t *testing.T) {
	boom := errors.New("boom")
	c, err := NewBuilder().AddDefinitions("test", Definitions{
		"broken": Singleton(func(*Container) (any, error) { return nil, boom }),
	}).Build()
	require.NoError(t, err)

	_, err = c.Get("broken")
	assert.ErrorIs(t, err, boom)

	var resolveErr *ResolveError
	require.ErrorAs(t, err, &resolveErr)
	assert.Equal(t, "broken", resolveErr.ID)
}

func TestExtensions(t *testing.T) {
	tag := func(name string) Extension {
		return func(c *Container, prev any) (any, error) {
			m := prev.(*mailer)
			m.tags = append(m.tags, name)
			return m, nil
		}
	}

	b := NewBuilder()
	b.AddDefinitions("internal", Definitions{
		"mailer": Singleton(func(*Container) (any, error) { return &mailer{}, nil }),
	})
	b.AddExtensions("first", Extensions{"mailer": tag("first")})
	b.AddExtensions("second", Extensions{"mailer": tag("second")})
	c, err := b.Build()
	require.NoError(t, err)

	m, err := Resolve[*mailer](c, "mailer")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, m.tags)

	// Extending a built singleton decorates the cached value.
	require.NoError(t, c.Extend("mailer", tag("late")))
	m, err = Resolve[*mailer](c, "mailer")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "late"}, m.tags)
}

func TestExtensions_Ref(t *testing.T) {
	upper := func(c *Container, prev any) (any, error) {
		return strings.ToUpper(prev.(string)), nil
	}
	b := NewBuilder()
	b.AddDefinitions("internal", Definitions{
		"driver":      Value("smtp"),
		"mail.driver": Ref("driver"),
	})
	b.AddExtensions("mail", Extensions{"mail.driver": upper})
	c, err := b.Build()
	require.NoError(t, err)

	v, err := c.Get("mail.driver")
	require.NoError(t, err)
	assert.Equal(t, "SMTP", v)

	target, err := c.Get("driver")
	require.NoError(t, err)
	assert.Equal(t, "smtp", target)

	c.Set("driver", Value("ses"))
	v, err = c.Get("mail.driver")
	require.NoError(t, err)
	assert.Equal(t, "SES", v)
}

func TestLateRegistration(t *testing.T) {
	c, err := NewBuilder().AddDefinitions("internal", Definitions{"name": Value("old")}).Build()
	require.NoError(t, err)

	_, err = c.Get("name")
	require.NoError(t, err)

	c.Set("name", Value("new"))
	c.Define("provider", Definitions{"queue": Value("redis")})

	name, err := c.Get("name")
	require.NoError(t, err)
	assert.Equal(t, "new", name)
	assert.True(t, c.Has("queue"))
	assert.Equal(t, "provider", c.Source("queue"))
}

func TestAliasResolver(t *testing.T) {
	aliases := map[string]string{"Mailer": "mailer"}
	c, err := NewBuilder().
		AddDefinitions("test", Definitions{"mailer": Value("smtp")}).
		WithAliasResolver(func(id string) (string, bool) {
			target, ok := aliases[id]
			return target, ok
		}).
		Build()
	require.NoError(t, err)

	v, err := c.Get("Mailer")
	require.NoError(t, err)
	assert.Equal(t, "smtp", v)
	assert.True(t, c.Has("Mailer"))
	assert.False(t, c.Has("Unknown"))
}

func TestConcurrentGet(t *testing.T) {
	c, err := NewBuilder().AddDefinitions("test", Definitions{
		"shared": Singleton(func(*Container) (any, error) { return &mailer{}, nil }),
	}).Build()
	require.NoError(t, err)

	results := make([]any, 16)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Get("shared")
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	wg.Wait()

	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestSnapshot(t *testing.T) {
	dir := t.TempDir()
	b := NewBuilder().
		AddDefinitions("internal", Definitions{"app": Value("x"), "alias": Ref("app")}).
		AddExtensions("provider", Extensions{"app": func(c *Container, prev any) (any, error) { return prev, nil }}).
		EnableCompilation(dir)
	c, err := b.Build()
	require.NoError(t, err)

	snap, err := ReadSnapshot(filepath.Join(dir, SnapshotFile))
	require.NoError(t, err)
	assert.Equal(t, Describe(c).Fingerprint, snap.Fingerprint)
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, SnapshotEntry{ID: "alias", Kind: "ref", Source: "internal", Target: "app"}, snap.Entries[0])
	assert.Equal(t, SnapshotEntry{ID: "app", Kind: "value", Source: "internal", Extensions: 1}, snap.Entries[1])

	v, err := c.Get("alias")
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}
