package logging

import (
	"log/slog"
	"slices"
)

// moduleKey is the attribute GetLogger attaches to every logger.
const moduleKey = "module"

// scope holds the attributes and groups a handler accumulated through
// WithAttrs and WithGroup. Each attribute keeps the groups open when it
// was added.
type scope struct {
	attrs  []scopedAttr
	groups []string
}

type scopedAttr struct {
	path []string
	attr slog.Attr
}

func (s scope) withAttrs(attrs []slog.Attr) scope {
	out := scope{attrs: slices.Clip(s.attrs), groups: s.groups}
	for _, a := range attrs {
		out.attrs = append(out.attrs, scopedAttr{path: s.groups, attr: a})
	}
	return out
}

func (s scope) withGroup(name string) scope {
	if name == "" {
		return s
	}
	return scope{attrs: s.attrs, groups: append(slices.Clip(s.groups), name)}
}

// walk visits the scope's attributes then the record's, with groups
// flattened into the path. A top-level module attribute is returned
// instead of visited.
func (s scope) walk(r slog.Record, visit func(path []string, a slog.Attr)) (module string) {
	module = "app"
	each := func(path []string, a slog.Attr) {
		if a.Key == moduleKey && len(path) == 0 {
			module = a.Value.String()
			return
		}
		flatten(path, a, visit)
	}
	for _, sa := range s.attrs {
		each(sa.path, sa.attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		each(s.groups, a)
		return true
	})
	return module
}

func flatten(path []string, a slog.Attr, visit func([]string, slog.Attr)) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() != slog.KindGroup {
		visit(path, a)
		return
	}
	inner := path
	if a.Key != "" {
		inner = append(slices.Clip(path), a.Key)
	}
	for _, ga := range a.Value.Group() {
		flatten(inner, ga, visit)
	}
}
