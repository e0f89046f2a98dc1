package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/rie/internal/evidence"
)

// Kind tags the outcome of decoding a model reply.
type Kind int

const (
	// Absent means no opinion is available: the call was skipped, failed or returned nothing.
	Absent Kind = iota
	// Malformed means a reply arrived but failed shape or range checks.
	Malformed
	// Valid means the reply decoded into an Opinion.
	Valid
)

func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case Malformed:
		return "malformed"
	case Valid:
		return "opinion"
	default:
		return "unknown"
	}
}

const (
	StrengthPlaceholder = "AI inferred from provided data"
	GapPlaceholder      = "Missing or weak evidence"
	DefaultMatchedWith  = "Job profile"
	DefaultWeight       = 6
	DefaultImpact       = "medium"
)

// Opinion is a sanitized model opinion. Every field has passed type and range checks.
type Opinion struct {
	Score          int              `json:"score"`
	Confidence     float64          `json:"confidence"`
	Strengths      []evidence.Claim `json:"strengths"`
	Gaps           []evidence.Claim `json:"gaps"`
	RiskFlags      []string         `json:"riskFlags"`
	Recommendation string           `json:"recommendation,omitempty"`
	Summary        string           `json:"executiveSummary,omitempty"`
	Seniority      string           `json:"seniorityEstimate,omitempty"`
	Readiness      string           `json:"hiringReadiness,omitempty"`
}

// Verdict is the tagged result of the boundary decode. Opinion is set only for Valid.
type Verdict struct {
	Kind    Kind
	Opinion *Opinion
	Reason  string
	Raw     string
	Model   string
}

// NoOpinion returns an Absent verdict with a reason.
func NoOpinion(reason string) Verdict {
	return Verdict{Kind: Absent, Reason: reason}
}

func malformed(format string, args ...any) Verdict {
	return Verdict{Kind: Malformed, Reason: fmt.Sprintf(format, args...)}
}

// payload mirrors the keys a model may send. Values stay untyped until checked.
type payload struct {
	FitScore          any `json:"fitScore"`
	QualityScore      any `json:"qualityScore"`
	Confidence        any `json:"confidence"`
	ModelConfidence   any `json:"modelConfidence"`
	Strengths         any `json:"strengths"`
	Gaps              any `json:"gaps"`
	Improvements      any `json:"improvements"`
	RiskFlags         any `json:"riskFlags"`
	Recommendation    any `json:"recommendation"`
	ExecutiveSummary  any `json:"executiveSummary"`
	SeniorityEstimate any `json:"seniorityEstimate"`
	HiringReadiness   any `json:"hiringReadiness"`
}

// Decode parses raw model text. Code fences and prose around the outermost
// JSON object are ignored.
func Decode(raw string) Verdict {
	if strings.TrimSpace(raw) == "" {
		return NoOpinion("empty response")
	}

	var data any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		v := malformed("parse response: %v", err)
		v.Raw = raw
		return v
	}

	object, ok := data.(map[string]any)
	if !ok {
		v := malformed("payload is not an object")
		v.Raw = raw
		return v
	}

	v := DecodeMap(object)
	v.Raw = raw
	return v
}

// DecodeMap validates an already parsed payload. A nil map is Absent.
func DecodeMap(data map[string]any) Verdict {
	if data == nil {
		return NoOpinion("no opinion supplied")
	}

	var p payload
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &p,
		TagName: "json",
	})
	if err != nil {
		return malformed("create decoder: %v", err)
	}
	if err := decoder.Decode(data); err != nil {
		return malformed("decode payload: %v", err)
	}

	rawScore := p.FitScore
	if rawScore == nil {
		rawScore = p.QualityScore
	}
	score := coerceFloat(rawScore)
	if math.IsNaN(score) || score < 0 || score > 100 {
		return malformed("score %v is not a number in [0,100]", rawScore)
	}

	rawConfidence := p.ModelConfidence
	if rawConfidence == nil {
		rawConfidence = p.Confidence
	}
	confidence := coerceFloat(rawConfidence)
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return malformed("confidence %v is not a number in [0,1]", rawConfidence)
	}

	gaps := p.Gaps
	if gaps == nil {
		gaps = p.Improvements
	}

	recommendation, _ := p.Recommendation.(string)

	return Verdict{
		Kind: Valid,
		Opinion: &Opinion{
			Score:          int(math.Round(score)),
			Confidence:     math.Round(confidence*1000) / 1000,
			Strengths:      evidence.CapClaims(strengthClaims(p.Strengths), evidence.MaxClaims),
			Gaps:           evidence.CapClaims(gapClaims(gaps), evidence.MaxClaims),
			RiskFlags:      evidence.CapStrings(stringList(p.RiskFlags), evidence.MaxRiskFlags),
			Recommendation: strings.TrimSpace(recommendation),
			Summary:        optionalString(p.ExecutiveSummary),
			Seniority:      optionalString(p.SeniorityEstimate),
			Readiness:      optionalString(p.HiringReadiness),
		},
	}
}

func strengthClaims(v any) []evidence.Claim {
	items, _ := v.([]any)
	claims := make([]evidence.Claim, 0, len(items))
	for _, item := range items {
		switch val := item.(type) {
		case string:
			claims = append(claims, evidence.Claim{
				Label:       val,
				Evidence:    StrengthPlaceholder,
				MatchedWith: DefaultMatchedWith,
				Weight:      DefaultWeight,
			})
		case map[string]any:
			weight := coerceFloat(val["weightImpact"])
			if math.IsNaN(weight) {
				weight = DefaultWeight
			}
			claims = append(claims, evidence.Claim{
				Label:       coerceString(val["label"]),
				Evidence:    orDefault(coerceString(val["evidence"]), StrengthPlaceholder),
				MatchedWith: orDefault(coerceString(val["matchedWith"]), DefaultMatchedWith),
				Weight:      int(math.Round(weight)),
			})
		}
	}
	return claims
}

func gapClaims(v any) []evidence.Claim {
	items, _ := v.([]any)
	claims := make([]evidence.Claim, 0, len(items))
	for _, item := range items {
		switch val := item.(type) {
		case string:
			claims = append(claims, evidence.Claim{Label: val, Evidence: GapPlaceholder, Impact: DefaultImpact})
		case map[string]any:
			reason := coerceString(val["reason"])
			if reason == "" {
				reason = coerceString(val["evidence"])
			}
			claims = append(claims, evidence.Claim{
				Label:    coerceString(val["label"]),
				Evidence: orDefault(reason, GapPlaceholder),
				Impact:   orDefault(strings.ToLower(coerceString(val["impactLevel"])), DefaultImpact),
			})
		}
	}
	return claims
}

// stringList keeps the string items of a list.
func stringList(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func optionalString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// extractJSON strips code fences and any text around the outermost object.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		raw = raw[start : end+1]
	}
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	case nil:
		return ""
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
