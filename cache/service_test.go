package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockStore returns a canned result from GetOrCompute for testing the
// generic helper.
type mockStore struct {
	result any
	err    error
}

func (m *mockStore) Get(ctx context.Context, key string) (any, bool) { return nil, false }

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return nil
}

func (m *mockStore) Delete(ctx context.Context, key string) bool { return false }

func (m *mockStore) Clear(ctx context.Context) {}

func (m *mockStore) ResetStats() {}

func (m *mockStore) Keys(ctx context.Context) []string { return nil }

func (m *mockStore) Stats(ctx context.Context) Stats { return Stats{} }

func (m *mockStore) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute ComputeFn) (any, error) {
	return m.result, m.err
}

func TestGetOrCompute_NilInterfaceNoPanic(t *testing.T) {
	mock := &mockStore{result: nil, err: nil}

	type SomeInterface interface {
		DoSomething() string
	}

	result, err := GetOrCompute[SomeInterface](context.Background(), mock, "test-key", NoExpiration, func(ctx context.Context) (SomeInterface, error) {
		return nil, nil
	})

	if err != nil {
		t.Errorf("expected no error but got: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result but got: %v", result)
	}
}

func TestGetOrCompute_NilPointerNoPanic(t *testing.T) {
	mock := &mockStore{result: (*string)(nil), err: nil}

	result, err := GetOrCompute[*string](context.Background(), mock, "test-key", NoExpiration, func(ctx context.Context) (*string, error) {
		return nil, nil
	})

	if err != nil {
		t.Errorf("expected no error but got: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result but got: %v", result)
	}
}

func TestGetOrCompute_TypeAssertionFailure(t *testing.T) {
	mock := &mockStore{result: "wrong-type", err: nil}

	result, err := GetOrCompute[int](context.Background(), mock, "test-key", NoExpiration, func(ctx context.Context) (int, error) {
		return 42, nil
	})

	if !errors.Is(err, ErrInvalidResultType) {
		t.Errorf("expected ErrInvalidResultType but got: %v", err)
	}
	if result != 0 {
		t.Errorf("expected zero value (0) but got: %v", result)
	}
}

func TestGetOrCompute_ErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	mock := &mockStore{result: nil, err: boom}

	_, err := GetOrCompute[string](context.Background(), mock, "test-key", NoExpiration, func(ctx context.Context) (string, error) {
		return "", nil
	})

	if !errors.Is(err, boom) {
		t.Errorf("expected underlying error but got: %v", err)
	}
}

func TestGetOrCompute_ValidResult(t *testing.T) {
	expectedValue := "test-value"
	mock := &mockStore{result: expectedValue, err: nil}

	result, err := GetOrCompute[string](context.Background(), mock, "test-key", NoExpiration, func(ctx context.Context) (string, error) {
		return expectedValue, nil
	})

	if err != nil {
		t.Errorf("expected no error but got: %v", err)
	}
	if result != expectedValue {
		t.Errorf("expected %q but got: %q", expectedValue, result)
	}
}
