package container

// Kind tells the container how to produce a definition's value.
type Kind int

const (
	// KindValue holds a ready value.
	KindValue Kind = iota
	// KindSingleton builds the value on first use and reuses it.
	KindSingleton
	// KindTransient builds a new value on every lookup.
	KindTransient
	// KindRef resolves another id.
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindSingleton:
		return "singleton"
	case KindTransient:
		return "transient"
	case KindRef:
		return "ref"
	default:
		return "unknown"
	}
}

// Factory builds a value. It may resolve other ids through c.
type Factory func(c *Container) (any, error)

// Extension decorates a value after it was built.
type Extension func(c *Container, prev any) (any, error)

// Definition describes how one id is produced.
type Definition struct {
	Kind    Kind
	Value   any
	Factory Factory
	Target  string
}

// Value defines an id bound to v.
func Value(v any) Definition {
	return Definition{Kind: KindValue, Value: v}
}

// Singleton defines a lazily built, shared value.
func Singleton(f Factory) Definition {
	return Definition{Kind: KindSingleton, Factory: f}
}

// Transient defines a value rebuilt on every lookup.
func Transient(f Factory) Definition {
	return Definition{Kind: KindTransient, Factory: f}
}

// Ref defines an id that resolves to target.
func Ref(target string) Definition {
	return Definition{Kind: KindRef, Target: target}
}

// Definitions is a named set of definitions contributed by one source.
type Definitions map[string]Definition

// Extensions is a named set of extensions contributed by one source.
type Extensions map[string]Extension

// AliasResolver maps an unknown id onto a defined one.
type AliasResolver func(id string) (string, bool)
