package source

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimKind(t *testing.T) {
	cases := map[string]string{
		"t1_abc": "abc",
		"t3_xyz": "xyz",
		"abc":    "abc",
		"t1_":    "t1_",
		"tx_abc": "tx_abc",
		"":       "",
	}
	for in, want := range cases {
		assert.Equal(t, want, TrimKind(in), "TrimKind(%q)", in)
	}
}

func TestTimestamp(t *testing.T) {
	var v struct {
		A Timestamp `json:"a"`
		B Timestamp `json:"b"`
		C Timestamp `json:"c"`
		D Timestamp `json:"d"`
		E Timestamp `json:"e"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": false, "b": 1600000000.75, "c": null, "d": "42", "e": 7}`), &v))
	assert.Equal(t, Timestamp(0), v.A)
	assert.Equal(t, Timestamp(1600000000), v.B)
	assert.Equal(t, Timestamp(0), v.C)
	assert.Equal(t, Timestamp(42), v.D)
	assert.Equal(t, Timestamp(7), v.E)

	var bad Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &bad))

	out, err := json.Marshal(Timestamp(12))
	require.NoError(t, err)
	assert.Equal(t, "12", string(out))
}
