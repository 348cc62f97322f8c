package payload

type optState uint8

const (
	stateUnset optState = iota
	stateDefault
	stateValue
)

// Opt is a field value that is either unset (keep whatever the form already
// holds), explicitly left to the platform default (submitted as an empty
// string) or a concrete value. The zero value is unset.
type Opt[T any] struct {
	state optState
	value T
}

func Unset[T any]() Opt[T] {
	return Opt[T]{}
}

func Default[T any]() Opt[T] {
	return Opt[T]{state: stateDefault}
}

func Value[T any](v T) Opt[T] {
	return Opt[T]{state: stateValue, value: v}
}

func (o Opt[T]) IsUnset() bool {
	return o.state == stateUnset
}

func (o Opt[T]) IsDefault() bool {
	return o.state == stateDefault
}

func (o Opt[T]) Get() (T, bool) {
	return o.value, o.state == stateValue
}

// encode renders the option, ok is false when the option is unset.
func encode[T any](o Opt[T], format func(T) string) (string, bool) {
	switch o.state {
	case stateDefault:
		return "", true
	case stateValue:
		return format(o.value), true
	}
	return "", false
}
