package opt_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Senticor-ai/project-sub002/internal/opt"
)

type patch struct {
	Due  opt.Field[string] `json:"due,omitzero"`
	Size opt.Field[int]    `json:"size,omitzero"`
}

func TestFieldEncoding(t *testing.T) {
	b, err := json.Marshal(patch{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(b))

	b, err = json.Marshal(patch{Due: opt.Null[string](), Size: opt.Some(3)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":null,"size":3}`, string(b))
}

func TestFieldDecoding(t *testing.T) {
	var p patch
	require.NoError(t, json.Unmarshal([]byte(`{"due":null}`), &p))
	assert.True(t, p.Due.IsPresent())
	assert.True(t, p.Due.IsNull())
	assert.False(t, p.Size.IsPresent())

	require.NoError(t, json.Unmarshal([]byte(`{"due":"2026-03-15","size":7}`), &p))
	due, ok := p.Due.Get()
	assert.True(t, ok)
	assert.Equal(t, "2026-03-15", due)
	assert.Equal(t, 7, *p.Size.Ptr())
}

func TestFromPtr(t *testing.T) {
	var nilStr *string
	assert.True(t, opt.FromPtr(nilStr).IsNull())
	assert.False(t, opt.OmitNil(nilStr).IsPresent())
	s := "x"
	assert.True(t, opt.FromPtr(&s).IsSet())
	assert.Nil(t, opt.Absent[string]().Ptr())
}
