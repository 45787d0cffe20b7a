package captions

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCaptions(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "bare object", raw: `{"captions":["A","B","C"]}`, want: []string{"A", "B", "C"}},
		{name: "json fence", raw: "```json\n{\"captions\":[\"A\",\"B\"]}\n```", want: []string{"A", "B"}},
		{name: "upper case fence", raw: "```JSON\n{\"captions\":[\"A\"]}\n```", want: []string{"A"}},
		{name: "plain fence", raw: "```\n{\"captions\":[\"A\"]}\n```", want: []string{"A"}},
		{name: "prose around object", raw: "Sure! Here you go:\n{\"captions\":[\"Fresh brew ☕\"]}\nEnjoy.", want: []string{"Fresh brew ☕"}},
		{name: "empty list", raw: `{"captions":[]}`, want: []string{}},
		{name: "extra fields", raw: `{"captions":["A"],"note":"x"}`, want: []string{"A"}},
		{name: "braces inside captions", raw: "```json\n{\"captions\":[\"{wow}\"]}\n```", want: []string{"{wow}"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCaptions(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, []string(got))
		})
	}
}

func TestParseCaptionsRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "prose only", raw: "I cannot help with that."},
		{name: "missing field", raw: `{"items":["A"]}`},
		{name: "null captions", raw: `{"captions":null}`},
		{name: "non string entries", raw: `{"captions":["A",2,{"x":1}]}`},
		{name: "null entry", raw: `{"captions":["A",null]}`},
		{name: "null entry in repeated key", raw: `{"captions":["A"],"captions":["B",null]}`},
		{name: "capitalised key", raw: `{"Captions":["A"]}`},
		{name: "upper case key", raw: `{"CAPTIONS":["A"]}`},
		{name: "captions not array", raw: `{"captions":"A, B"}`},
		{name: "top level array", raw: `["A","B"]`},
		{name: "truncated", raw: `{"captions":["A","B"`},
		{name: "fenced truncated", raw: "```json\n{\"captions\":[\"A\",\n```"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCaptions(tc.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedReply), "err = %v", err)
			assert.Nil(t, got)
		})
	}
}

func TestParseCaptionsFencedMatchesBare(t *testing.T) {
	bare := `{"captions":["Rise and grind","Latte love","Bean there"]}`
	fenced := "```json\n" + bare + "\n```"

	fromBare, err := ParseCaptions(bare)
	require.NoError(t, err)
	fromFenced, err := ParseCaptions(fenced)
	require.NoError(t, err)
	assert.Equal(t, fromBare, fromFenced)
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSONObject("noise {\"a\":1} noise"))
	assert.Equal(t, `{"a":{"b":2}}`, extractJSONObject("```json\n{\"a\":{\"b\":2}}\n```"))
	assert.Equal(t, "", extractJSONObject("no braces here"))
	assert.Equal(t, "", extractJSONObject("} backwards {"))
}
