package appraisal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validJSON = `{
  "title": "THE SHATTERED LOFT",
  "listingDescription": "Ambient ventilation throughout.",
  "rentPrice": "$9,500 FRESH",
  "amenities": ["Organic Glass Shards", "Open-Air Ceiling", "Raw Concrete Gallery"],
  "broQuote": "Habibi, this is very Berlin."
}`

func TestParseResult_Valid(t *testing.T) {
	r, err := ParseResult(validJSON)
	require.NoError(t, err)
	assert.Equal(t, "THE SHATTERED LOFT", r.Title)
	assert.Equal(t, "$9,500 FRESH", r.RentPrice)
	assert.Equal(t, []string{"Organic Glass Shards", "Open-Air Ceiling", "Raw Concrete Gallery"}, r.Amenities)
	assert.Equal(t, "Habibi, this is very Berlin.", r.BroQuote)
}

func TestParseResult_EmptyAmenitiesAllowed(t *testing.T) {
	r, err := ParseResult(`{"title":"t","listingDescription":"d","rentPrice":"p","amenities":[],"broQuote":"q"}`)
	require.NoError(t, err)
	assert.NotNil(t, r.Amenities)
	assert.Empty(t, r.Amenities)
}

func TestParseResult_Rejects(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind ErrorKind
	}{
		{"empty", "", KindDecode},
		{"not json", "Bro, the wifi is down", KindDecode},
		{"array", `["title"]`, KindDecode},
		{"trailing garbage", validJSON + "}", KindDecode},
		{"missing broQuote", `{"title":"t","listingDescription":"d","rentPrice":"p","amenities":["a"]}`, KindSchema},
		{"null title", `{"title":null,"listingDescription":"d","rentPrice":"p","amenities":["a"],"broQuote":"q"}`, KindSchema},
		{"numeric rentPrice", `{"title":"t","listingDescription":"d","rentPrice":12000,"amenities":["a"],"broQuote":"q"}`, KindSchema},
		{"amenities string", `{"title":"t","listingDescription":"d","rentPrice":"p","amenities":"pool","broQuote":"q"}`, KindSchema},
		{"amenities mixed", `{"title":"t","listingDescription":"d","rentPrice":"p","amenities":["a",3],"broQuote":"q"}`, KindSchema},
		{"amenities null element", `{"title":"t","listingDescription":"d","rentPrice":"p","amenities":["a",null],"broQuote":"q"}`, KindSchema},
		{"empty object", `{}`, KindSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseResult(tt.text)
			var ae *AppraisalError
			require.True(t, errors.As(err, &ae), "want AppraisalError, got %v", err)
			assert.Equal(t, tt.kind, ae.Kind)
			assert.Equal(t, Result{}, r, "no partial result on failure")
		})
	}
}

func TestResultClone(t *testing.T) {
	r, err := ParseResult(validJSON)
	require.NoError(t, err)

	c := r.Clone()
	c.Amenities[0] = "changed"
	assert.Equal(t, "Organic Glass Shards", r.Amenities[0])
}

func TestResponseSchemaRequiresAllFields(t *testing.T) {
	schema := ResponseSchema()
	assert.Equal(t, "OBJECT", schema["type"])
	assert.ElementsMatch(t, RequiredFields, schema["required"])

	props := schema["properties"].(map[string]interface{})
	for _, f := range RequiredFields {
		assert.Contains(t, props, f)
	}
	amenities := props["amenities"].(map[string]interface{})
	assert.Equal(t, "ARRAY", amenities["type"])

	sdk := sdkSchema()
	assert.ElementsMatch(t, RequiredFields, sdk.Required)
	assert.Len(t, sdk.Properties, len(RequiredFields))
}
