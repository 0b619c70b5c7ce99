package pinvec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtectedPrefix(t *testing.T) {
	tests := []struct {
		name     string
		mutation Mutation
		want     int
	}{
		{"push on empty", Push(0), 0},
		{"push on four", Push(4), 4},
		{"extend by three", Extend(5, 3), 5},
		{"pop last of four", Pop(4), 3},
		{"pop last of one", Pop(1), 0},
		{"truncate to two", Truncate(4, 2), 2},
		{"truncate to same length", Truncate(4, 4), 4},
		{"clear", Clear(4), 0},
		{"insert at front", Insert(4, 0), 0},
		{"insert in middle", Insert(4, 2), 2},
		{"insert at end", Insert(4, 4), 4},
		{"remove at front protects nothing", Remove(4, 0), 0},
		{"remove last", Remove(4, 3), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mutation.Protected())
		})
	}
}

func TestProtectedPrefix_NeverNegative(t *testing.T) {
	assert.Equal(t, 0, ProtectedPrefix(G2ShrinkEnd, 2, 5, 0))
	assert.Equal(t, 3, ProtectedPrefix(G3Insert, 3, 1, 10))
	assert.Equal(t, 0, ProtectedPrefix(Guarantee(0), 3, 1, 1))
}

func TestOpGuarantee(t *testing.T) {
	assert.Equal(t, G1GrowEnd, OpPush.Guarantee())
	assert.Equal(t, G1GrowEnd, OpExtend.Guarantee())
	assert.Equal(t, G2ShrinkEnd, OpPop.Guarantee())
	assert.Equal(t, G2ShrinkEnd, OpTruncate.Guarantee())
	assert.Equal(t, G2ShrinkEnd, OpClear.Guarantee())
	assert.Equal(t, G3Insert, OpInsert.Guarantee())
	assert.Equal(t, G4Remove, OpRemove.Guarantee())
	assert.Equal(t, Guarantee(0), OpGet.Guarantee())
}

func TestParseGuarantee(t *testing.T) {
	for _, g := range AllGuarantees() {
		parsed, err := ParseGuarantee(g.String())
		require.NoError(t, err)
		assert.Equal(t, g, parsed)
	}

	_, err := ParseGuarantee("G5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown guarantee")
}

func TestGuaranteeJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Guarantee{"g": G3Insert})
	require.NoError(t, err)
	assert.JSONEq(t, `{"g":"G3"}`, string(data))

	var decoded struct {
		G Guarantee `json:"g"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"g":"G4"}`), &decoded))
	assert.Equal(t, G4Remove, decoded.G)
}

func TestParseOp(t *testing.T) {
	for _, op := range MutatingOps() {
		parsed, err := ParseOp(string(op))
		require.NoError(t, err)
		assert.Equal(t, op, parsed)
	}

	_, err := ParseOp("swap")
	require.Error(t, err)
}

func TestGuaranteeDescribe(t *testing.T) {
	assert.Contains(t, G1GrowEnd.Describe(), "[0, n)")
	assert.Contains(t, G2ShrinkEnd.Describe(), "[0, n-m)")
	assert.Equal(t, "unknown guarantee", Guarantee(9).Describe())
	assert.Equal(t, "Guarantee(9)", Guarantee(9).String())
}
