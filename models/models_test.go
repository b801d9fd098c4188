package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWebhookSpec(t *testing.T) {
	_, err := NewWebhookSpec("repo", "s", nil, "https://x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "no events found for repo")

	_, err = NewWebhookSpec("repo", "s", []string{}, "https://x")
	assert.Error(t, err)

	_, err = NewWebhookSpec("repo", "s", []string{"push"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no payloadUrl found for repo")

	events := []string{"push"}
	spec, err := NewWebhookSpec("repo", "", events, "https://x")
	require.NoError(t, err)
	events[0] = "mutated"
	assert.Equal(t, []string{"push"}, spec.Events)
}

func TestErrorKinds(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := fmt.Errorf("wrapped: %w", NewError("fetch group", "FOO", ErrNotFound, cause))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrTransport))
	assert.Equal(t, ErrNotFound, KindOf(err))

	var me *Error
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "FOO", me.Target)

	hook := NewError("create webhook", "repo", ErrWebhookExists, nil)
	assert.True(t, errors.Is(hook, ErrWebhookExists))
	assert.True(t, errors.Is(hook, ErrConflict))
	assert.Equal(t, ErrWebhookExists, KindOf(hook))
	assert.Equal(t, "create webhook repo: webhook already exists", hook.Error())
}

func TestGroupAccessorsCopy(t *testing.T) {
	g := NewGroup("FOO", "FOO", []Project{{Name: "a"}}, []Project{{Name: "s"}})
	direct := g.DirectProjects()
	direct[0].Name = "changed"
	assert.Equal(t, "a", g.DirectProjects()[0].Name)
	assert.Equal(t, "s", g.SharedProjects()[0].Name)
}

func TestFailed(t *testing.T) {
	v := 1
	results := []Result[int]{{Target: "a", Value: &v}, {Target: "b", Err: errors.New("x")}}
	assert.Equal(t, 1, Failed(results))
	assert.True(t, results[0].OK())
}
