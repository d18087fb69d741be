package types

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFlexNumbers(t *testing.T) {
	var v struct {
		A FlexInt   `json:"a"`
		B FlexInt   `json:"b"`
		C FlexFloat `json:"c"`
		D FlexFloat `json:"d"`
		E FlexInt   `json:"e"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":3,"b":"7","c":"1.5","d":null,"e":""}`), &v))

	assert.Equal(t, 3, *v.A.Ptr())
	assert.Equal(t, 7, *v.B.Ptr())
	assert.Equal(t, 1.5, *v.C.Ptr())
	assert.Nil(t, v.D.Ptr())
	assert.Nil(t, v.E.Ptr())

	var bad FlexInt
	assert.Error(t, json.Unmarshal([]byte(`"seven"`), &bad))
}

func TestFlexListAndJSON(t *testing.T) {
	var v struct {
		One   FlexList[string]            `json:"one"`
		Many  FlexList[string]            `json:"many"`
		Str   FlexList[string]            `json:"str"`
		Names FlexJSON[map[string]string] `json:"names"`
		Junk  FlexJSON[map[string]string] `json:"junk"`
	}
	body := `{"one":"a","many":["a","b"],"str":"[\"x\",\"y\"]","names":"{\"th\":\"บ้าน\"}","junk":"{not json"}`
	require.NoError(t, json.Unmarshal([]byte(body), &v))

	assert.Equal(t, []string{"a"}, v.One.Slice())
	assert.Equal(t, []string{"a", "b"}, v.Many.Slice())
	assert.Equal(t, []string{"x", "y"}, v.Str.Slice())
	assert.True(t, v.Names.Set)
	assert.Equal(t, "บ้าน", v.Names.Value["th"])
	assert.False(t, v.Junk.Set)
}

func TestFlagSetForms(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"map", `{"wifi":true,"parking":false,"pool":"yes"}`, []string{"pool", "wifi"}},
		{"string map", `"{\"gym\":1}"`, []string{"gym"}},
		{"records", `[{"type":"beach","active":true},{"type":"mall","active":false},{"name":"bts"}]`, []string{"beach", "bts"}},
		{"bare names", `["a"," ","b"]`, []string{"a", "b"}},
		{"empty string", `""`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var set FlagSet
			require.NoError(t, json.Unmarshal([]byte(tt.body), &set))
			require.NotNil(t, set)
			assert.Equal(t, tt.want, set.Keys())
		})
	}

	var absent FlagSet
	require.NoError(t, json.Unmarshal([]byte(`{broken`), &absent))
	assert.Nil(t, absent)
}

func TestFlagDistance(t *testing.T) {
	var set FlagSet
	require.NoError(t, json.Unmarshal([]byte(`{"beach":{"active":true,"distance":"1.2"},"mall":{"active":false}}`), &set))
	require.Len(t, set, 1)
	require.NotNil(t, set[0].Distance)
	assert.Equal(t, 1.2, *set[0].Distance)
}

func TestFromStorage(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{gorm.ErrRecordNotFound, http.StatusNotFound},
		{fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), http.StatusConflict},
		{gorm.ErrForeignKeyViolated, http.StatusBadRequest},
		{gorm.ErrCheckConstraintViolated, http.StatusBadRequest},
		{fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		err := FromStorage(tt.err, "Property")
		assert.Equal(t, tt.want, StatusOf(err), tt.err.Error())
		assert.ErrorIs(t, err, tt.err)
	}

	assert.NoError(t, FromStorage(nil, "x"))
	classified := Forbidden("no")
	assert.Same(t, classified, FromStorage(classified, "x"))
}

func TestWrapKeepsClassification(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusOf(Wrap(BadRequest("bad"), "ignored")))

	err := Wrap(fmt.Errorf("disk full"), "Error storing upload")
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Error storing upload", apiErr.Message)
	assert.NotEmpty(t, apiErr.Stack())

	assert.NoError(t, Wrap(nil, "x"))
}
