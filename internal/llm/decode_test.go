// internal/llm/decode_test.go
package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allowKinds(t string) bool {
	switch t {
	case "pricing_increase", "pricing_decrease", "discount", "bundle", "promo_campaign":
		return true
	}
	return false
}

func TestDecodeRecommendationValid(t *testing.T) {
	text := `{"title":"Raise price","type":"pricing_increase","change_pct":6,"description":"Demand is up","impact":"+$120 estimated monthly","product_id":7,"product_name":"Mug"}`

	d := DecodeRecommendation(text, allowKinds)
	require.Equal(t, DecodedRecommendation, d.Kind)
	assert.True(t, d.Valid())
	assert.NoError(t, d.Err)

	r := d.Recommendation
	assert.Equal(t, "Raise price", r.Title)
	assert.Equal(t, "pricing_increase", r.Type)
	require.NotNil(t, r.ChangePct)
	assert.Equal(t, 6.0, *r.ChangePct)
	require.NotNil(t, r.ProductID)
	assert.Equal(t, uint(7), *r.ProductID)
	assert.Equal(t, "Mug", r.ProductName)
}

func TestDecodeRecommendationEmbeddedBlock(t *testing.T) {
	text := "Sure! Here it is:\n```json\n{\"title\":\"Bundle {combo}\",\"type\":\"bundle\",\"change_pct\":null,\"description\":\"Pair it\",\"impact\":\"\"}\n```\nThanks"

	d := DecodeRecommendation(text, allowKinds)
	require.Equal(t, DecodedRecommendation, d.Kind)
	assert.Equal(t, "Bundle {combo}", d.Recommendation.Title)
	assert.Nil(t, d.Recommendation.ChangePct)
	assert.Nil(t, d.Recommendation.ProductID)
	assert.Empty(t, d.Recommendation.ProductName)
}

func TestDecodeRecommendationZeroProductID(t *testing.T) {
	d := DecodeRecommendation(`{"title":"Discount","type":"discount","change_pct":10,"description":"Clear stock","product_id":0}`, allowKinds)
	require.Equal(t, DecodedRecommendation, d.Kind)
	assert.Nil(t, d.Recommendation.ProductID)
}

func TestDecodeRecommendationInvalid(t *testing.T) {
	cases := map[string]string{
		"no json":          "I would recommend a discount.",
		"unknown kind":     `{"title":"x","type":"not_a_real_kind","description":"d"}`,
		"missing kind":     `{"title":"x","description":"d"}`,
		"missing title":    `{"type":"discount","description":"d"}`,
		"blank desc":       `{"title":"x","type":"discount","description":"  "}`,
		"string pct":       `{"title":"x","type":"discount","description":"d","change_pct":"10%"}`,
		"negative id":      `{"title":"x","type":"discount","description":"d","product_id":-1}`,
		"fractional id":    `{"title":"x","type":"discount","description":"d","product_id":1.5}`,
		"impact as number": `{"title":"x","type":"discount","description":"d","impact":12}`,
		"array":            `["discount"]`,
		"unbalanced":       `{"title":"x","type":"discount"`,
	}

	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			d := DecodeRecommendation(text, allowKinds)
			assert.Equal(t, DecodedInvalid, d.Kind)
			assert.False(t, d.Valid())
			assert.True(t, errors.Is(d.Err, ErrMalformedResponse))
		})
	}
}

func TestDecodeForecast(t *testing.T) {
	text := `{"items":[{"label":"2026-08","pred":1200.5,"confidence":91},{"label":"2026-09","pred":1300,"confidence":null},{"label":"2026-10","pred":1400,"confidence":140}]}`

	d := DecodeForecast(text, "label")
	require.Equal(t, DecodedForecast, d.Kind)
	require.Len(t, d.Forecast, 3)

	assert.Equal(t, "2026-08", d.Forecast[0].Key)
	assert.Equal(t, 1200.5, d.Forecast[0].Pred)
	require.NotNil(t, d.Forecast[0].Confidence)
	assert.Equal(t, 91, *d.Forecast[0].Confidence)
	assert.Nil(t, d.Forecast[1].Confidence)
	assert.Equal(t, 100, *d.Forecast[2].Confidence, "confidence is clamped")
}

func TestDecodeForecastNumericIDs(t *testing.T) {
	d := DecodeForecast(`{"items":[{"id":12,"pred":40},{"id":"13","pred":22}]}`, "id")
	require.True(t, d.Valid())
	assert.Equal(t, "12", d.Forecast[0].Key)
	assert.Equal(t, "13", d.Forecast[1].Key)
}

func TestDecodeForecastInvalid(t *testing.T) {
	cases := map[string]string{
		"not json":     "the forecast is up",
		"no items":     `{"predictions":[]}`,
		"empty items":  `{"items":[]}`,
		"missing pred": `{"items":[{"label":"a"}]}`,
		"string pred":  `{"items":[{"label":"a","pred":"10"}]}`,
		"missing key":  `{"items":[{"pred":10}]}`,
		"item scalar":  `{"items":[10]}`,
	}

	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			d := DecodeForecast(text, "label")
			assert.Equal(t, DecodedInvalid, d.Kind)
			assert.ErrorIs(t, d.Err, ErrMalformedResponse)
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	block, ok := ExtractJSONObject(`noise {"a":{"b":"}"}} tail {"c":1}`)
	require.True(t, ok)
	assert.Equal(t, `{"a":{"b":"}"}}`, block)

	block, ok = ExtractJSONObject(`{"s":"escaped \" quote {"}`)
	require.True(t, ok)
	assert.Equal(t, `{"s":"escaped \" quote {"}`, block)

	_, ok = ExtractJSONObject("no braces here")
	assert.False(t, ok)

	_, ok = ExtractJSONObject(`{"open": {`)
	assert.False(t, ok)
}

func TestErrorTypes(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := error(&TransportError{Model: "gemini", Err: cause})

	assert.True(t, IsTransport(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "gemini")
	assert.False(t, IsTransport(ErrEmptyResponse))

	cfgErr := &ConfigurationError{Setting: "GEMINI_API_KEY"}
	assert.Contains(t, cfgErr.Error(), "GEMINI_API_KEY")
}
