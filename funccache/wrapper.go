package funccache

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/goliatone/go-function-cache/cache"
	"github.com/goliatone/go-function-cache/internal/memstore"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// errSkipNil is the internal settlement for nil results when SkipNilResults
// is set. Routing it through the store keeps the at-most-one-inflight
// guarantee without ever writing the entry.
var errSkipNil = errors.New("funccache: nil result not cached")

// Wrap adapts fn into a cached callable with the identical signature.
//
// The callable is inspected exactly once, at wrap time: a leading
// context.Context parameter binds the wrapper to the context-aware path,
// anything else to the blocking path with a background context. Each call
// serializes the arguments into a key and delegates to the store's
// GetOrCompute, so the wrapped function's side effects occur exactly once per
// distinct key per TTL window.
//
// fn must have the shape func([ctx,] args...) (T, error).
func Wrap[F any](fn F, opts Options) (F, error) {
	var zero F
	wrapped, err := wrapReflect(fn, opts)
	if err != nil {
		return zero, err
	}
	return wrapped.(F), nil
}

func wrapReflect(fn any, opts Options) (any, error) {
	fnValue := reflect.ValueOf(fn)
	if !fnValue.IsValid() || fnValue.Kind() != reflect.Func {
		return nil, &cache.ConfigError{Field: "fn", Message: "must be a function"}
	}

	fnType := fnValue.Type()
	if fnType.NumOut() != 2 {
		return nil, &cache.ConfigError{Field: "fn", Message: "must return (T, error)"}
	}
	if fnType.Out(1) != errorType {
		return nil, &cache.ConfigError{Field: "fn", Message: "second return value must be error"}
	}

	ttl, err := normalizeTTL(opts.TTL)
	if err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = deriveName(fnValue)
	}

	serializer := opts.Serializer
	if serializer == nil {
		serializer = cache.NewDefaultKeySerializer()
	}

	store := opts.Store
	if store == nil {
		private, err := memstore.New(cache.DefaultConfig(), nil)
		if err != nil {
			return nil, err
		}
		store = private
	}

	if opts.Registry != nil {
		opts.Registry.Register(name, ttl, store)
	}

	// Bound once here; never re-inspected per call.
	hasCtx := fnType.NumIn() > 0 && fnType.In(0) == contextType
	outType := fnType.Out(0)
	variadic := fnType.IsVariadic()

	wrapper := reflect.MakeFunc(fnType, func(in []reflect.Value) []reflect.Value {
		ctx := context.Background()
		keyStart := 0
		if hasCtx {
			ctx = in[0].Interface().(context.Context)
			keyStart = 1
		}

		keyArgs := make([]any, 0, len(in)-keyStart)
		for _, v := range in[keyStart:] {
			keyArgs = append(keyArgs, v.Interface())
		}

		key, err := buildKey(serializer, opts.KeyFunc, name, keyArgs)
		if err != nil {
			return errReturn(outType, err)
		}

		result, err := store.GetOrCompute(ctx, key, ttl, func(callCtx context.Context) (any, error) {
			call := in
			if hasCtx {
				call = append([]reflect.Value{reflect.ValueOf(callCtx)}, in[1:]...)
			}

			var out []reflect.Value
			if variadic {
				out = fnValue.CallSlice(call)
			} else {
				out = fnValue.Call(call)
			}

			if !out[1].IsNil() {
				return nil, out[1].Interface().(error)
			}
			if opts.SkipNilResults && isNilValue(out[0]) {
				return nil, errSkipNil
			}
			return out[0].Interface(), nil
		})
		if err != nil {
			if errors.Is(err, errSkipNil) {
				return []reflect.Value{reflect.Zero(outType), reflect.Zero(errorType)}
			}
			return errReturn(outType, err)
		}

		return valueReturn(outType, result)
	})

	return wrapper.Interface(), nil
}

// normalizeTTL maps an unset TTL to NoExpiration and rejects invalid values.
func normalizeTTL(ttl time.Duration) (time.Duration, error) {
	switch {
	case ttl == 0, ttl == cache.NoExpiration:
		return cache.NoExpiration, nil
	case ttl > 0:
		return ttl, nil
	default:
		return 0, cache.ErrInvalidTTL
	}
}

// deriveName resolves the function's symbol name, trimmed of its import path
// prefix. Closures get runtime-assigned names (pkg.Caller.func1) that are
// stable within a process; pass Options.Name for stable cross-process keys.
func deriveName(fnValue reflect.Value) string {
	name := runtime.FuncForPC(fnValue.Pointer()).Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func buildKey(serializer cache.KeySerializer, keyFn KeyFunc, name string, args []any) (string, error) {
	if keyFn != nil {
		return keyFn(args...)
	}
	return serializer.SerializeKey(name, args...)
}

// isNilValue reports whether a result value is a nil of a nilable kind.
func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

// errReturn produces the (zero, err) result pair for the wrapped signature.
func errReturn(outType reflect.Type, err error) []reflect.Value {
	errVal := reflect.New(errorType).Elem()
	errVal.Set(reflect.ValueOf(err))
	return []reflect.Value{reflect.Zero(outType), errVal}
}

// valueReturn converts a cached any back into the wrapped signature's result.
func valueReturn(outType reflect.Type, result any) []reflect.Value {
	if result == nil {
		return []reflect.Value{reflect.Zero(outType), reflect.Zero(errorType)}
	}

	rv := reflect.ValueOf(result)
	if !rv.Type().AssignableTo(outType) {
		err := fmt.Errorf("%w: expected %s, got %T", cache.ErrInvalidResultType, outType, result)
		return errReturn(outType, err)
	}
	if rv.Type() != outType {
		// Interface results need an explicit box of the correct static type.
		boxed := reflect.New(outType).Elem()
		boxed.Set(rv)
		rv = boxed
	}
	return []reflect.Value{rv, reflect.Zero(errorType)}
}
