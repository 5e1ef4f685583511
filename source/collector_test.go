package source

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/assessor/core"
)

func TestCollector_OrderAndErrors(t *testing.T) {
	c, err := NewCollector(4, nil)
	require.NoError(t, err)
	defer c.Release()

	ctx := context.Background()
	var pending []<-chan Result
	for i := range 8 {
		pending = append(pending, c.Submit(ctx, func(ctx context.Context) (*core.Proposal, error) {
			time.Sleep(time.Duration(8-i) * time.Millisecond)
			p := &core.Proposal{Title: fmt.Sprintf("doc %d", i)}
			if i%3 == 0 {
				return p, fmt.Errorf("doc %d recovered", i)
			}
			if i == 5 {
				return nil, errors.New("doc 5 lost")
			}
			return p, nil
		}))
	}

	proposals, err := c.Gather(ctx, pending)
	require.Error(t, err)
	for _, msg := range []string{"doc 0 recovered", "doc 3 recovered", "doc 6 recovered", "doc 5 lost"} {
		assert.ErrorContains(t, err, msg)
	}

	titles := make([]string, 0, len(proposals))
	for _, p := range proposals {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"doc 0", "doc 1", "doc 2", "doc 3", "doc 4", "doc 6", "doc 7"}, titles)
}

func TestCollector_CanceledBeforeRun(t *testing.T) {
	c, err := NewCollector(1, nil)
	require.NoError(t, err)
	defer c.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	r := <-c.Submit(ctx, func(context.Context) (*core.Proposal, error) {
		ran = true
		return &core.Proposal{}, nil
	})
	assert.False(t, ran)
	assert.ErrorIs(t, r.Err, context.Canceled)
	assert.Nil(t, r.Proposal)
}

func TestCollector_GatherCanceled(t *testing.T) {
	c, err := NewCollector(1, nil)
	require.NoError(t, err)
	defer c.Release()

	block := make(chan struct{})
	defer close(block)
	pending := []<-chan Result{c.Submit(context.Background(), func(context.Context) (*core.Proposal, error) {
		<-block
		return nil, nil
	})}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Gather(ctx, pending)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCollector_NoFailures(t *testing.T) {
	c, err := NewCollector(0, nil)
	require.NoError(t, err)
	defer c.Release()

	ch := c.Submit(context.Background(), func(context.Context) (*core.Proposal, error) {
		return &core.Proposal{Title: "only"}, nil
	})
	proposals, err := c.Gather(context.Background(), []<-chan Result{ch})
	require.NoError(t, err)
	require.Len(t, proposals, 1)
}
