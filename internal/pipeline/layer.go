package pipeline

import "slices"

// attribute describes how values of one job attribute are tested for
// emptiness, copied and merged.
type attribute[T any] struct {
	empty func(T) bool
	clone func(T) T
	merge func(current, value T) T
}

// layer holds the three tiers a collection applies to an attribute of its
// jobs, in order: init if the job has no value, every added value, then the
// override.
type layer[T any] struct {
	init        T
	hasInit     bool
	adds        []T
	override    T
	hasOverride bool
}

func (l *layer[T]) initialize(v T) {
	l.init, l.hasInit = v, true
}

func (l *layer[T]) add(v T) {
	l.adds = append(l.adds, v)
}

func (l *layer[T]) replace(v T) {
	l.override, l.hasOverride = v, true
}

func (l *layer[T]) apply(current T, attr attribute[T]) T {
	if l.hasInit && attr.empty(current) {
		current = attr.clone(l.init)
	}
	for _, v := range l.adds {
		current = attr.merge(current, attr.clone(v))
	}
	if l.hasOverride {
		current = attr.clone(l.override)
	}
	return current
}

func replaceValue[T any](_, v T) T {
	return v
}

func sameValue[T any](v T) T {
	return v
}

func isNil[T any](v *T) bool {
	return v == nil
}

func isEmptySlice[T any](v []T) bool {
	return len(v) == 0
}

func concat[T any](current, v []T) []T {
	return append(slices.Clone(current), v...)
}

var (
	imageAttribute = attribute[*Image]{
		empty: isNil[Image],
		clone: sameValue[*Image],
		merge: replaceValue[*Image],
	}
	allowFailureAttribute = attribute[AllowFailure]{
		empty: AllowFailure.Untouched,
		clone: AllowFailure.copy,
		merge: replaceValue[AllowFailure],
	}
	variablesAttribute = attribute[map[string]string]{
		empty: func(v map[string]string) bool { return len(v) == 0 },
		clone: cloneVariables,
		merge: mergeVariables,
	}
	tagsAttribute = attribute[[]string]{
		empty: isEmptySlice[string],
		clone: slices.Clone[[]string],
		merge: func(current, v []string) []string { return appendUnique(slices.Clone(current), v...) },
	}
	rulesAttribute = attribute[[]*Rule]{
		empty: isEmptySlice[*Rule],
		clone: slices.Clone[[]*Rule],
		merge: concat[*Rule],
	}
	// needs and dependencies are unset only when nil. An empty list is an
	// explicit value.
	dependencyAttribute = attribute[[]Dependency]{
		empty: func(v []Dependency) bool { return v == nil },
		clone: func(v []Dependency) []Dependency { return append([]Dependency{}, v...) },
		merge: appendDependencies,
	}
	cacheAttribute = attribute[*Cache]{
		empty: isNil[Cache],
		clone: (*Cache).Copy,
		merge: replaceValue[*Cache],
	}
	artifactsAttribute = attribute[*Artifacts]{
		empty: func(v *Artifacts) bool { return v == nil || v.Empty() },
		clone: (*Artifacts).Copy,
		merge: replaceValue[*Artifacts],
	}
)
