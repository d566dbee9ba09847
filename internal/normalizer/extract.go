package normalizer

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Candidate key tables. Each concept is looked up in the listed order and the
// first present, well-typed value wins.
var (
	generatedTextKeys = []string{"generated_text", "watermarked_text", "output_text", "output"}

	textStatusKeys      = []string{"status", "verdict", "result"}
	textConfidenceKeys  = []string{"confidence", "score", "detection_score"}
	textZKeys           = []string{"z_score", "z"}
	textPKeys           = []string{"p_value", "p"}
	textTokensKeys      = []string{"num_tokens_scored", "tokens_analyzed", "num_tokens"}
	textMeanGKeys       = []string{"mean_g", "g_mean", "green_fraction"}
	textExplanationKeys = []string{"explanation", "message"}
	textReportKeys      = []string{"report", "summary"}

	originalImageKeys    = []string{"original_image", "unwatermarked_image", "original_image_url", "original_url", "original"}
	watermarkedImageKeys = []string{"watermarked_image", "watermarked_image_url", "watermarked_url", "watermarked"}

	isWatermarkedKeys    = []string{"is_watermarked", "watermarked_detected", "detected"}
	imgConfidenceKeys    = []string{"confidence", "detection_confidence", "score"}
	bitAccuracyKeys      = []string{"bit_accuracy", "bit_acc"}
	correlationKeys      = []string{"correlation", "corr"}
	pValueKeys           = []string{"p_value", "pvalue", "p"}
	methodKeys           = []string{"method", "watermark_method"}
	statisticalTestKeys  = []string{"statistical_test", "is_significant"}
	extractedMessageKeys = []string{"extracted_message", "decoded_message"}
	expectedMessageKeys  = []string{"expected_message", "original_message"}

	scanModelKeys     = []string{"model", "model_name"}
	scanInputKeys     = []string{"input_text", "sentence", "text"}
	scanNumTokensKeys = []string{"num_tokens", "token_count"}
	scanPerplexityKey = []string{"perplexity"}
	scanTotalKeys     = []string{"total_likelihood", "log_likelihood"}
	scanTokensKeys    = []string{"tokens", "token_likelihoods"}
	scanKKeys         = []string{"k"}
	scanTopTokensKeys = []string{"top_tokens", "top_k"}
	scanWordsKeys     = []string{"words"}
	scanEmbeddingKeys = []string{"embeddings"}
	scanAttnKeys      = []string{"sorted_scores", "attention_scores", "scores"}
	scanAttnOutKeys   = []string{"attention_output", "output"}
	scanGraphGenKeys  = []string{"graph_generated"}

	// graphImageKeys lists every field name the service has used for a plot.
	graphImageKeys = []string{"graph", "graph_url", "heatmap", "heatmap_url", "plot_url"}
)

// nestedDetectionKey holds detection payloads wrapped one level deep.
const nestedDetectionKey = "detection"

func lookup(obj map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringField(obj map[string]any, keys []string) *string {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return &s
		}
	}
	return nil
}

func floatField(obj map[string]any, keys []string) *float64 {
	for _, k := range keys {
		if f, ok := toFloat(obj[k]); ok {
			return &f
		}
	}
	return nil
}

func intField(obj map[string]any, keys []string) *int {
	for _, k := range keys {
		if f, ok := toFloat(obj[k]); ok && f == math.Trunc(f) {
			i := int(f)
			return &i
		}
	}
	return nil
}

func boolField(obj map[string]any, keys []string) *bool {
	for _, k := range keys {
		switch t := obj[k].(type) {
		case bool:
			return &t
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
				return &b
			}
		}
	}
	return nil
}

// toFloat accepts JSON numbers and numeric strings. NaN and infinities are
// treated as absent.
func toFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ImageSource turns a service image value into an <img> source. Values that
// already carry a URL scheme are returned unchanged; bare base64 gets the PNG
// data-URL prefix.
func ImageSource(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	if hasURLScheme(v) {
		return v
	}
	return "data:image/png;base64," + v
}

func hasURLScheme(v string) bool {
	lower := strings.ToLower(v)
	for _, scheme := range []string{"http://", "https://", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}

func imageField(obj map[string]any, keys []string) *string {
	s := stringField(obj, keys)
	if s == nil {
		return nil
	}
	src := ImageSource(*s)
	return &src
}
