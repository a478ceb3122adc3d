package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"b": 1, "a": 2, "c": "x"})
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"b":1,"c":"x"}`, string(got))
}

func TestMarshalCanonical_StructUsesJSONTags(t *testing.T) {
	got, err := MarshalCanonical(Ticket{ID: "T1", Status: TicketNew, CategoryID: "billing"})
	require.NoError(t, err)
	assert.Equal(t, `{"category_id":"billing","id":"T1","status":"new"}`, string(got))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	got, err := MarshalCanonical("<a&b>")
	require.NoError(t, err)
	assert.Equal(t, `"<a&b>"`, string(got))
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	// "e" + combining acute accent normalizes to the precomposed form.
	decomposed, err := MarshalCanonical("e\u0301")
	require.NoError(t, err)
	precomposed, err := MarshalCanonical("\u00e9")
	require.NoError(t, err)
	assert.Equal(t, precomposed, decomposed)
}

func TestMarshalCanonical_LineSeparatorsUnescaped(t *testing.T) {
	got, err := MarshalCanonical("a\u2028b")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(got))

	literal, err := MarshalCanonical(`a\u2028b`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(literal))
}

func TestMarshalCanonical_Numbers(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{80.5, "80.5"},
		{60.0, "60"},
		{math.Copysign(0, -1), "0"},
		{1e21, "1e+21"},
		{0.000001, "0.000001"},
		{1e-7, "1e-7"},
		{int64(9007199254740993), "9007199254740993"},
	}
	for _, tt := range tests {
		got, err := MarshalCanonical(map[string]any{"speed": tt.in})
		require.NoError(t, err)
		assert.Equal(t, `{"speed":`+tt.want+`}`, string(got))
	}
}

func TestMarshalCanonical_NumberOutOfRange(t *testing.T) {
	_, err := MarshalCanonical(json.RawMessage(`{"speed":1e400}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestMarshalCanonical_UTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as a surrogate pair (0xD83D...) which sorts before U+FF61.
	got, err := MarshalCanonical(map[string]any{"\uff61": 1, "\U0001F600": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"\uff61\":1}", string(got))
}

func TestEqual(t *testing.T) {
	a := Task{ID: "K1", Status: TaskToDo, CategoryID: "ops"}
	b := a
	assert.True(t, Equal(a, b))

	b.Status = TaskSeen
	assert.False(t, Equal(a, b))
}

func TestFingerprint_StableAcrossEncodings(t *testing.T) {
	tickets := []Ticket{{ID: "T1", Status: TicketNew, CategoryID: "billing"}}

	fromValue, err := Fingerprint(tickets)
	require.NoError(t, err)

	data, err := Encode(tickets)
	require.NoError(t, err)
	fromJSON, err := FingerprintJSON(data)
	require.NoError(t, err)

	assert.Equal(t, fromValue, fromJSON)
	assert.Len(t, fromValue, 64)
}

func TestFingerprint_DomainSeparated(t *testing.T) {
	v := []string{"x"}
	snap, err := Fingerprint(v)
	require.NoError(t, err)
	canonical, err := MarshalCanonical(v)
	require.NoError(t, err)
	assert.Equal(t, hashWithDomain(DomainSnapshot, canonical), snap)
	assert.NotEqual(t, hashWithDomain("watchtower/other/v1", canonical), snap)
}

func TestDecode_EmptyInput(t *testing.T) {
	got, err := Decode[Ticket](nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)

	got, err = Decode[Ticket]([]byte("null"))
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestEncode_NilIsEmptyArray(t *testing.T) {
	data, err := Encode[Vehicle](nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
