package container

import (
	"soma/pkg/logging"
)

type definitionSet struct {
	source string
	defs   Definitions
	exts   Extensions
}

// Builder accumulates definition sets and produces a Container exactly once.
// Sets are applied in the order they were added; a later set wins for an id
// that several sets define. Extensions stack in the same order.
type Builder struct {
	sets       []definitionSet
	aliases    AliasResolver
	compileDir string
	built      bool
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddDefinitions queues a definition set.
func (b *Builder) AddDefinitions(source string, defs Definitions) *Builder {
	if len(defs) > 0 {
		b.sets = append(b.sets, definitionSet{source: source, defs: defs})
	}
	return b
}

// AddExtensions queues an extension set.
func (b *Builder) AddExtensions(source string, exts Extensions) *Builder {
	if len(exts) > 0 {
		b.sets = append(b.sets, definitionSet{source: source, exts: exts})
	}
	return b
}

// WithAliasResolver installs the lookup consulted for unknown ids.
func (b *Builder) WithAliasResolver(r AliasResolver) *Builder {
	b.aliases = r
	return b
}

// EnableCompilation makes Build write a snapshot of the definition graph to dir.
func (b *Builder) EnableCompilation(dir string) *Builder {
	b.compileDir = dir
	return b
}

// IsBuilt reports whether Build already ran.
func (b *Builder) IsBuilt() bool {
	return b.built
}

// Build produces the container.
func (b *Builder) Build() (*Container, error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}
	b.built = true

	c := newContainer()
	c.st.aliases = b.aliases
	for _, set := range b.sets {
		for id, def := range set.defs {
			c.st.defs[id] = def
			c.st.sources[id] = set.source
		}
		for id, ext := range set.exts {
			c.st.exts[id] = append(c.st.exts[id], ext)
		}
	}
	logging.Debug("Container", "Built container with %d definitions from %d sets", len(c.st.defs), len(b.sets))

	if b.compileDir != "" {
		if _, err := WriteSnapshot(b.compileDir, c); err != nil {
			logging.Warn("Container", "Failed to write container snapshot: %v", err)
		}
	}
	return c, nil
}
