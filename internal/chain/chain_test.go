package chain

import (
	"context"
	"sync"
	"testing"

	"github.com/frankli0324/go-kwest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tag(name string, seen *[]string) Middleware {
	return func(ctx context.Context, req *model.Request, next Handler) (*model.Response, error) {
		*seen = append(*seen, name)
		return next(ctx, req)
	}
}

func terminal(ctx context.Context, req *model.Request) (*model.Response, error) {
	return model.NewResponse(200, nil, nil), nil
}

func TestComposeOrder(t *testing.T) {
	var seen []string
	h := Compose(terminal, tag("a", &seen), nil, tag("b", &seen), tag("c", &seen))
	_, err := h(context.Background(), &model.Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, seen)
}

func TestComposeIdentity(t *testing.T) {
	h := Compose(terminal)
	resp, err := h(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestComposeShortCircuit(t *testing.T) {
	called := false
	h := Compose(func(ctx context.Context, req *model.Request) (*model.Response, error) {
		called = true
		return nil, nil
	}, func(ctx context.Context, req *model.Request, next Handler) (*model.Response, error) {
		return model.NewResponse(418, nil, nil), nil
	})
	resp, err := h(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 418, resp.StatusCode)
	assert.False(t, called)
}

func TestRef(t *testing.T) {
	var r Ref
	assert.Nil(t, r.Load())

	var wg sync.WaitGroup
	var mu sync.Mutex
	var seen []string
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Update(func(h Handler) Handler {
				if h == nil {
					h = terminal
				}
				return Compose(h, func(ctx context.Context, req *model.Request, next Handler) (*model.Response, error) {
					mu.Lock()
					seen = append(seen, "x")
					mu.Unlock()
					return next(ctx, req)
				})
			})
		}()
	}
	wg.Wait()

	_, err := r.Load()(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, seen, 10, "no concurrent update is lost")
}

func TestComposeNoResponse(t *testing.T) {
	empty := func(ctx context.Context, req *model.Request) (*model.Response, error) { return nil, nil }

	var got error
	outer := func(ctx context.Context, req *model.Request, next Handler) (*model.Response, error) {
		resp, err := next(ctx, req)
		got = err
		return resp, err
	}
	_, err := Compose(empty, outer)(context.Background(), &model.Request{})
	assert.ErrorIs(t, err, model.ErrNoResponse)
	assert.ErrorIs(t, got, model.ErrNoResponse)

	swallow := func(ctx context.Context, req *model.Request, next Handler) (*model.Response, error) {
		return nil, nil
	}
	_, err = Compose(terminal, swallow, outer)(context.Background(), &model.Request{})
	assert.ErrorIs(t, err, model.ErrNoResponse)
	assert.ErrorIs(t, got, model.ErrNoResponse)
}
