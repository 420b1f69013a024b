package soundgraph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationJSON(t *testing.T) {
	g, err := Build([]Node{
		{ID: 1, Duration: 1, PitchRatio: 1.5, Inskip: 0.25},
		{ID: 2, Duration: 0.5, PitchRatio: 1},
	}, []Transition{
		{From: 1, To: 2, Weight: 2},
		{From: 2, To: 2, Weight: 1},
	})
	require.NoError(t, err)

	data, err := json.Marshal(g)
	require.NoError(t, err)

	var back Generation
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, g.ID, back.ID)
	assert.Equal(t, g.Nodes().Nodes(), back.Nodes().Nodes())
	assert.Equal(t, g.Matrix().Transitions(), back.Matrix().Transitions())
}

func TestGenerationUnmarshalValidates(t *testing.T) {
	var g Generation
	err := json.Unmarshal([]byte(`{"nodes":[{"id":1,"duration":1,"pitch":1}],"transitions":[{"from":1,"to":4,"weight":1}]}`), &g)
	assert.ErrorIs(t, err, ErrUnknownNode)

	err = json.Unmarshal([]byte(`{"nodes":[{"id":1,"duration":1,"pitch":1}],"transitions":[{"from":1,"to":1,"weight":-1}]}`), &g)
	assert.ErrorIs(t, err, ErrInvalidWeight)
}

func TestGenerationAccessorsCopy(t *testing.T) {
	g, err := Build(unitNodes(1), []Transition{{From: 1, To: 1, Weight: 1}})
	require.NoError(t, err)

	m := g.Matrix()
	require.NoError(t, m.SetWeight(1, 1, 9))
	assert.Equal(t, 1.0, g.Matrix().Weight(1, 1))
}
