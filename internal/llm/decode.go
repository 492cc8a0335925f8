// internal/llm/decode.go
package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DecodedKind tags the variant held by a Decoded value.
type DecodedKind int

const (
	DecodedInvalid DecodedKind = iota
	DecodedRecommendation
	DecodedForecast
)

func (k DecodedKind) String() string {
	switch k {
	case DecodedRecommendation:
		return "recommendation"
	case DecodedForecast:
		return "forecast"
	default:
		return "invalid"
	}
}

// Decoded is the result of a strict decode of model output. Exactly one of
// Recommendation or Forecast is meaningful, selected by Kind. Invalid values
// carry the reason in Err, which wraps ErrMalformedResponse.
type Decoded struct {
	Kind           DecodedKind
	Recommendation RecommendationDraft
	Forecast       []ForecastItem
	Err            error
}

func (d Decoded) Valid() bool {
	return d.Kind != DecodedInvalid
}

func invalid(format string, args ...interface{}) Decoded {
	return Decoded{
		Kind: DecodedInvalid,
		Err:  fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...)),
	}
}

// RecommendationDraft is a schema-valid recommendation as the model wrote it.
// ChangePct is not clamped here.
type RecommendationDraft struct {
	Title       string
	Type        string
	ChangePct   *float64
	Description string
	Impact      string
	ProductID   *uint
	ProductName string
}

// ForecastItem is one predicted point keyed by label, product id or category.
type ForecastItem struct {
	Key        string
	Pred       float64
	Confidence *int
}

// DecodeRecommendation validates text against the recommendation schema.
// allowedType decides which "type" values are acceptable.
func DecodeRecommendation(text string, allowedType func(string) bool) Decoded {
	obj, err := parseObject(text)
	if err != nil {
		return invalid("%v", err)
	}

	var draft RecommendationDraft
	var ok bool

	if draft.Type, ok = requiredString(obj, "type"); !ok || !allowedType(draft.Type) {
		return invalid("type %v is not allowed", obj["type"])
	}
	if draft.Title, ok = requiredString(obj, "title"); !ok {
		return invalid("title is missing")
	}
	if draft.Description, ok = requiredString(obj, "description"); !ok {
		return invalid("description is missing")
	}
	if draft.Impact, ok = optionalString(obj, "impact"); !ok {
		return invalid("impact is not a string")
	}
	if draft.ProductName, ok = optionalString(obj, "product_name"); !ok {
		return invalid("product_name is not a string")
	}

	if pct, present, ok := optionalNumber(obj, "change_pct"); !ok {
		return invalid("change_pct is not a number")
	} else if present {
		draft.ChangePct = &pct
	}

	if id, present, ok := optionalNumber(obj, "product_id"); !ok {
		return invalid("product_id is not a number")
	} else if present && id != 0 {
		// 0 means the model did not pick a product; the caller fills it in.
		if id < 1 || id != math.Trunc(id) || id > math.MaxUint32 {
			return invalid("product_id %v is not a valid id", id)
		}
		pid := uint(id)
		draft.ProductID = &pid
	}

	return Decoded{Kind: DecodedRecommendation, Recommendation: draft}
}

// DecodeForecast validates text against the forecast schema
// {"items":[{label|id|category, pred, confidence}]}. Keys are looked up in
// the order given by keyFields.
func DecodeForecast(text string, keyFields ...string) Decoded {
	if len(keyFields) == 0 {
		keyFields = []string{"label", "id", "category"}
	}

	obj, err := parseObject(text)
	if err != nil {
		return invalid("%v", err)
	}

	rawItems, ok := obj["items"].([]interface{})
	if !ok {
		return invalid("items is not an array")
	}
	if len(rawItems) == 0 {
		return invalid("items is empty")
	}

	items := make([]ForecastItem, 0, len(rawItems))
	for i, raw := range rawItems {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			return invalid("item %d is not an object", i)
		}

		key, ok := forecastKey(entry, keyFields)
		if !ok {
			return invalid("item %d has no usable key", i)
		}

		pred, present, ok := optionalNumber(entry, "pred")
		if !ok || !present {
			return invalid("item %d has no numeric pred", i)
		}

		item := ForecastItem{Key: key, Pred: pred}
		if conf, present, ok := optionalNumber(entry, "confidence"); !ok {
			return invalid("item %d confidence is not a number", i)
		} else if present {
			c := int(math.Round(math.Max(0, math.Min(100, conf))))
			item.Confidence = &c
		}
		items = append(items, item)
	}

	return Decoded{Kind: DecodedForecast, Forecast: items}
}

func forecastKey(entry map[string]interface{}, keyFields []string) (string, bool) {
	for _, field := range keyFields {
		switch v := entry[field].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s, true
			}
		case json.Number:
			f, err := v.Float64()
			if err != nil || f != math.Trunc(f) {
				return "", false
			}
			return strconv.FormatInt(int64(f), 10), true
		}
	}
	return "", false
}

// parseObject parses text as a JSON object, falling back to the first
// balanced {...} block when the whole text does not parse.
func parseObject(text string) (map[string]interface{}, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}

	if obj, err := unmarshalObject(text); err == nil {
		return obj, nil
	}

	block, ok := ExtractJSONObject(text)
	if !ok {
		return nil, fmt.Errorf("no JSON object found")
	}
	obj, err := unmarshalObject(block)
	if err != nil {
		return nil, fmt.Errorf("embedded block is not valid JSON: %v", err)
	}
	return obj, nil
}

func unmarshalObject(text string) (map[string]interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var obj map[string]interface{}
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("not an object")
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after object")
	}
	return obj, nil
}

// ExtractJSONObject returns the first balanced {...} block of text. Braces
// inside JSON strings are ignored.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func requiredString(obj map[string]interface{}, key string) (string, bool) {
	s, ok := obj[key].(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// optionalString accepts a string, null or an absent key.
func optionalString(obj map[string]interface{}, key string) (string, bool) {
	switch v := obj[key].(type) {
	case nil:
		return "", true
	case string:
		return strings.TrimSpace(v), true
	default:
		return "", false
	}
}

// optionalNumber accepts a finite number, null or an absent key.
func optionalNumber(obj map[string]interface{}, key string) (value float64, present bool, ok bool) {
	switch v := obj[key].(type) {
	case nil:
		return 0, false, true
	case json.Number:
		f, err := v.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false, false
		}
		return f, true, true
	default:
		return 0, false, false
	}
}
