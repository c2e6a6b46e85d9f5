package param

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestRegistryOrderAndLookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(
		New(10, "First").Build(),
		New(3, "Second").Build(),
	))

	if r.Count() != 2 {
		t.Fatalf("Expected 2 parameters, got %d", r.Count())
	}
	assert.Equal(t, uint32(10), r.GetByIndex(0).ID)
	assert.Equal(t, uint32(3), r.GetByIndex(1).ID)
	assert.Nil(t, r.GetByIndex(2))
	assert.Nil(t, r.GetByIndex(-1))
	assert.Equal(t, "Second", r.Get(3).Name)
	assert.Nil(t, r.Get(99))
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(New(1, "A").Build()))
	assert.Error(t, r.Add(New(1, "B").Build()))
	assert.Equal(t, int32(1), r.Count())
}

func TestRegistryGroups(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddGroup(Group{ID: 1, Name: "Filter"}))
	require.NoError(t, r.AddGroup(Group{ID: 2, Name: "Envelope", ParentID: 1}))
	assert.Error(t, r.AddGroup(Group{ID: 1, Name: "Again"}))
	assert.Error(t, r.AddGroup(Group{ID: RootGroup, Name: "Root"}))

	assert.Equal(t, 2, r.GroupCount())
	g, ok := r.Group(2)
	require.True(t, ok)
	assert.Equal(t, "Envelope", g.Name)

	_, ok = r.GroupAt(5)
	assert.False(t, ok)
}

func TestRegistryResetAll(t *testing.T) {
	r := NewRegistry()
	p := New(1, "Level").Range(0, 10).Default(5).Build()
	require.NoError(t, r.Add(p))

	p.SetValue(1)
	r.ResetAll()
	assert.Equal(t, 0.5, p.GetValue())
}

func TestConcurrentValueAccess(t *testing.T) {
	p := New(1, "Level").Build()

	var g errgroup.Group
	for w := 0; w < 4; w++ {
		g.Go(func() error {
			for i := 0; i < 1000; i++ {
				p.SetValue(float64(i%2) * 0.5)
				_ = p.GetValue()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	v := p.GetValue()
	assert.True(t, v == 0 || v == 0.5, "torn value %v", v)
}
