package determinism

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashJSONIsStable(t *testing.T) {
	type payload struct {
		Bill  float64           `json:"bill"`
		Extra map[string]string `json:"extra"`
	}

	a, err := HashJSON(payload{Bill: 15000, Extra: map[string]string{"b": "2", "a": "1"}})
	require.NoError(t, err)
	b, err := HashJSON(payload{Bill: 15000, Extra: map[string]string{"a": "1", "b": "2"}})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a.Hex(), 64)
	assert.Equal(t, a.Hex()[:12], a.Short())

	c, err := HashJSON(payload{Bill: 15001})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestHashJSONRejectsUnencodable(t *testing.T) {
	_, err := HashJSON(make(chan int))
	assert.Error(t, err)
}

func TestSortedKeys(t *testing.T) {
	type category string
	m := map[category]int{"religious": 1, "domestic": 2, "industrial": 3}
	assert.Equal(t, []category{"domestic", "industrial", "religious"}, SortedKeys(m))
}
