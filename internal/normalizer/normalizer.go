// Package normalizer turns loosely shaped analysis service responses into
// typed result variants. It never fails: anything it cannot recognize is
// returned as a raw passthrough.
package normalizer

import (
	"encoding/json"
	"sort"

	"blackboxscan/internal/models"
)

// EmbeddingPreviewDims is the number of leading embedding values kept.
const EmbeddingPreviewDims = 20

// Normalize classifies raw for op.
func Normalize(op models.Operation, raw map[string]any) *models.AnalysisResult {
	res := &models.AnalysisResult{Operation: op, RawJSON: indent(raw)}

	switch {
	case op.IsText():
		if gen := textGeneration(raw); gen != nil {
			res.Kind, res.Generation = models.KindGeneration, gen
			return res
		}
		if det := textDetection(detectionSource(raw, hasTextDetection)); det != nil {
			res.Kind, res.TextDetection = models.KindTextDetection, det
			return res
		}
	case op.IsImage():
		if gen := imageGeneration(raw); gen != nil {
			res.Kind, res.Generation = models.KindGeneration, gen
			return res
		}
		if det := imageDetection(detectionSource(raw, hasImageDetection)); det != nil {
			res.Kind, res.Detection = models.KindDetection, det
			return res
		}
	case op.IsScan():
		if scan := scanResult(raw); scan != nil {
			res.Kind, res.Scan = models.KindScan, scan
			return res
		}
	}

	res.Kind = models.KindRaw
	return res
}

// detectionSource picks the object detection fields are read from. The top
// level wins when it carries usable detection fields; otherwise a nested
// detection object is used when present.
func detectionSource(raw map[string]any, usable func(map[string]any) bool) map[string]any {
	if usable(raw) {
		return raw
	}
	if nested, ok := raw[nestedDetectionKey].(map[string]any); ok {
		return nested
	}
	return raw
}

func hasTextDetection(obj map[string]any) bool {
	return stringField(obj, textStatusKeys) != nil || floatField(obj, textConfidenceKeys) != nil
}

func hasImageDetection(obj map[string]any) bool {
	return boolField(obj, isWatermarkedKeys) != nil
}

func textGeneration(raw map[string]any) *models.GenerationResult {
	text := stringField(raw, generatedTextKeys)
	if text == nil {
		return nil
	}
	return &models.GenerationResult{GeneratedText: text}
}

func textDetection(src map[string]any) *models.TextDetectionResult {
	status := stringField(src, textStatusKeys)
	confidence := floatField(src, textConfidenceKeys)
	if status == nil && confidence == nil {
		return nil
	}
	det := &models.TextDetectionResult{
		Confidence:     confidence,
		Z:              floatField(src, textZKeys),
		P:              floatField(src, textPKeys),
		TokensAnalyzed: intField(src, textTokensKeys),
		MeanG:          floatField(src, textMeanGKeys),
		Explanation:    stringField(src, textExplanationKeys),
		Report:         stringField(src, textReportKeys),
	}
	if status != nil {
		det.Status = *status
	}
	return det
}

func imageGeneration(raw map[string]any) *models.GenerationResult {
	original := imageField(raw, originalImageKeys)
	watermarked := imageField(raw, watermarkedImageKeys)
	if original == nil || watermarked == nil {
		return nil
	}
	return &models.GenerationResult{OriginalImage: original, WatermarkedImage: watermarked}
}

func imageDetection(src map[string]any) *models.DetectionResult {
	isWatermarked := boolField(src, isWatermarkedKeys)
	if isWatermarked == nil {
		return nil
	}
	return &models.DetectionResult{
		IsWatermarked:    *isWatermarked,
		Confidence:       floatField(src, imgConfidenceKeys),
		BitAccuracy:      floatField(src, bitAccuracyKeys),
		Correlation:      floatField(src, correlationKeys),
		PValue:           floatField(src, pValueKeys),
		Method:           stringField(src, methodKeys),
		StatisticalTest:  boolField(src, statisticalTestKeys),
		ExtractedMessage: stringField(src, extractedMessageKeys),
		ExpectedMessage:  stringField(src, expectedMessageKeys),
	}
}

func scanResult(raw map[string]any) *models.ScanResult {
	scan := &models.ScanResult{
		Model:           stringField(raw, scanModelKeys),
		Input:           stringField(raw, scanInputKeys),
		NumTokens:       intField(raw, scanNumTokensKeys),
		Perplexity:      floatField(raw, scanPerplexityKey),
		TotalLikelihood: floatField(raw, scanTotalKeys),
		K:               intField(raw, scanKKeys),
		AttentionOutput: stringField(raw, scanAttnOutKeys),
		GraphGenerated:  boolField(raw, scanGraphGenKeys),
		Graph:           imageField(raw, graphImageKeys),
	}
	if v, ok := lookup(raw, scanTokensKeys); ok {
		scan.Tokens = tokenScores(v)
	}
	if v, ok := lookup(raw, scanTopTokensKeys); ok {
		scan.TopTokens = tokenScores(v)
	}
	if v, ok := lookup(raw, scanAttnKeys); ok {
		scan.AttentionScores = tokenScores(v)
	}
	if v, ok := lookup(raw, scanWordsKeys); ok {
		scan.Words = stringList(v)
	}
	if v, ok := lookup(raw, scanEmbeddingKeys); ok {
		scan.Embeddings = embeddingPreviews(v, scan.Words)
	}

	if scan.Model == nil && scan.NumTokens == nil && scan.Perplexity == nil &&
		scan.TotalLikelihood == nil && scan.K == nil && scan.AttentionOutput == nil &&
		scan.GraphGenerated == nil && scan.Graph == nil &&
		len(scan.Tokens) == 0 && len(scan.TopTokens) == 0 && len(scan.AttentionScores) == 0 &&
		len(scan.Words) == 0 && len(scan.Embeddings) == 0 {
		return nil
	}
	return scan
}

// tokenScores accepts [[token, score], ...], [{token, score}, ...] or a
// {token: score} object. Objects are ordered by descending score.
func tokenScores(v any) []models.TokenScore {
	switch t := v.(type) {
	case []any:
		out := make([]models.TokenScore, 0, len(t))
		for _, item := range t {
			if ts, ok := tokenScore(item); ok {
				out = append(out, ts)
			}
		}
		return out
	case map[string]any:
		out := make([]models.TokenScore, 0, len(t))
		for token, raw := range t {
			if score, ok := toFloat(raw); ok {
				out = append(out, models.TokenScore{Token: token, Score: score})
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Score != out[j].Score {
				return out[i].Score > out[j].Score
			}
			return out[i].Token < out[j].Token
		})
		return out
	}
	return nil
}

var (
	tokenNameKeys  = []string{"token", "word", "text"}
	tokenScoreKeys = []string{"score", "probability", "prob", "likelihood", "log_prob", "attention"}
)

func tokenScore(item any) (models.TokenScore, bool) {
	switch t := item.(type) {
	case []any:
		if len(t) < 2 {
			return models.TokenScore{}, false
		}
		token, ok := t[0].(string)
		if !ok {
			return models.TokenScore{}, false
		}
		score, ok := toFloat(t[1])
		if !ok {
			return models.TokenScore{}, false
		}
		return models.TokenScore{Token: token, Score: score}, true
	case map[string]any:
		token := stringField(t, tokenNameKeys)
		score := floatField(t, tokenScoreKeys)
		if token == nil || score == nil {
			return models.TokenScore{}, false
		}
		return models.TokenScore{Token: *token, Score: *score}, true
	}
	return models.TokenScore{}, false
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// embeddingPreviews accepts {word: vector} objects or a list of vectors
// aligned with words. A vector may be wrapped in one extra list.
func embeddingPreviews(v any, words []string) []models.EmbeddingPreview {
	switch t := v.(type) {
	case map[string]any:
		names := make([]string, 0, len(t))
		for word := range t {
			names = append(names, word)
		}
		// Keep request order when the service echoes words, alphabetical otherwise.
		ordered := orderLike(names, words)
		out := make([]models.EmbeddingPreview, 0, len(ordered))
		for _, word := range ordered {
			if p, ok := preview(word, t[word]); ok {
				out = append(out, p)
			}
		}
		return out
	case []any:
		out := make([]models.EmbeddingPreview, 0, len(t))
		for i, vec := range t {
			word := ""
			if i < len(words) {
				word = words[i]
			}
			if p, ok := preview(word, vec); ok {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}

func preview(word string, v any) (models.EmbeddingPreview, bool) {
	vec, ok := v.([]any)
	if !ok {
		return models.EmbeddingPreview{}, false
	}
	if len(vec) > 0 {
		if inner, nested := vec[0].([]any); nested {
			vec = inner
		}
	}
	values := make([]float64, 0, min(len(vec), EmbeddingPreviewDims))
	for _, item := range vec {
		f, ok := toFloat(item)
		if !ok {
			return models.EmbeddingPreview{}, false
		}
		if len(values) < EmbeddingPreviewDims {
			values = append(values, f)
		}
	}
	return models.EmbeddingPreview{Word: word, Values: values, Dimensions: len(vec)}, true
}

func orderLike(names, preferred []string) []string {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = false
	}
	out := make([]string, 0, len(names))
	for _, p := range preferred {
		if used, ok := seen[p]; ok && !used {
			out = append(out, p)
			seen[p] = true
		}
	}
	rest := make([]string, 0, len(names)-len(out))
	for _, n := range names {
		if !seen[n] {
			rest = append(rest, n)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func indent(raw map[string]any) string {
	if raw == nil {
		return "{}"
	}
	b, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
