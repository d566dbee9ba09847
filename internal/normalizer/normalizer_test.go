package normalizer_test

import (
	"encoding/json"
	"testing"

	"blackboxscan/internal/models"
	"blackboxscan/internal/normalizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decode mimics the client: responses reach the normalizer as decoded JSON.
func decode(t *testing.T, body string) map[string]any {
	t.Helper()
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return raw
}

func TestNormalize_TextGeneration(t *testing.T) {
	res := normalizer.Normalize(models.OpTextGenerate, decode(t, `{"generated_text":"Once upon a time","prompt":"x"}`))

	require.Equal(t, models.KindGeneration, res.Kind)
	require.NotNil(t, res.Generation)
	require.NotNil(t, res.Generation.GeneratedText)
	assert.Equal(t, "Once upon a time", *res.Generation.GeneratedText)
	assert.Nil(t, res.Generation.WatermarkedImage)
	assert.Contains(t, res.RawJSON, `"prompt": "x"`)
}

func TestNormalize_TextGenerationPrecedence(t *testing.T) {
	res := normalizer.Normalize(models.OpTextGenerate, decode(t, `{"output":"second","watermarked_text":"first"}`))

	require.Equal(t, models.KindGeneration, res.Kind)
	assert.Equal(t, "first", *res.Generation.GeneratedText)
}

func TestNormalize_TextDetection(t *testing.T) {
	t.Run("top level fields", func(t *testing.T) {
		res := normalizer.Normalize(models.OpTextDetect, decode(t, `{
			"status":"WATERMARK DETECTED","confidence":0.91,"z_score":4.2,"p_value":0.0001,
			"num_tokens_scored":120,"mean_g":0.62,"explanation":"many green tokens"}`))

		require.Equal(t, models.KindTextDetection, res.Kind)
		det := res.TextDetection
		assert.Equal(t, "WATERMARK DETECTED", det.Status)
		assert.InDelta(t, 0.91, *det.Confidence, 1e-9)
		assert.InDelta(t, 4.2, *det.Z, 1e-9)
		assert.InDelta(t, 0.0001, *det.P, 1e-9)
		assert.Equal(t, 120, *det.TokensAnalyzed)
		assert.InDelta(t, 0.62, *det.MeanG, 1e-9)
		assert.Equal(t, "many green tokens", *det.Explanation)
		assert.Nil(t, det.Report)
	})

	t.Run("nested detection without top level status", func(t *testing.T) {
		res := normalizer.Normalize(models.OpTextDetect, decode(t, `{"detection":{"status":"WATERMARK DETECTED","confidence":0.97}}`))

		require.Equal(t, models.KindTextDetection, res.Kind)
		assert.Equal(t, "WATERMARK DETECTED", res.TextDetection.Status)
		assert.InDelta(t, 0.97, *res.TextDetection.Confidence, 1e-9)
	})

	t.Run("top level status wins over nested", func(t *testing.T) {
		res := normalizer.Normalize(models.OpTextDetect, decode(t, `{"status":"NO WATERMARK","detection":{"status":"WATERMARK DETECTED"}}`))

		require.Equal(t, models.KindTextDetection, res.Kind)
		assert.Equal(t, "NO WATERMARK", res.TextDetection.Status)
	})

	t.Run("non detection result object does not hide nested detection", func(t *testing.T) {
		res := normalizer.Normalize(models.OpTextDetect, decode(t, `{"result":{"id":"x"},"detection":{"status":"WATERMARK DETECTED","confidence":0.97}}`))

		require.Equal(t, models.KindTextDetection, res.Kind)
		assert.Equal(t, "WATERMARK DETECTED", res.TextDetection.Status)
		assert.InDelta(t, 0.97, *res.TextDetection.Confidence, 1e-9)
	})

	t.Run("absent optional numbers stay nil", func(t *testing.T) {
		res := normalizer.Normalize(models.OpTextDetect, decode(t, `{"status":"NO WATERMARK"}`))

		require.Equal(t, models.KindTextDetection, res.Kind)
		assert.Nil(t, res.TextDetection.Confidence)
		assert.Nil(t, res.TextDetection.Z)
		assert.Nil(t, res.TextDetection.TokensAnalyzed)
	})

	t.Run("unrecognized shape falls back to raw", func(t *testing.T) {
		res := normalizer.Normalize(models.OpTextDetect, decode(t, `{"foo":"bar"}`))

		assert.Equal(t, models.KindRaw, res.Kind)
		assert.Nil(t, res.TextDetection)
		assert.Contains(t, res.RawJSON, `"foo": "bar"`)
	})
}

func TestNormalize_ImageGeneration(t *testing.T) {
	res := normalizer.Normalize(models.OpFreqGenerate, decode(t, `{
		"original_image":"iVBORw0KGgo=",
		"watermarked_image":"https://cdn.example.com/wm.png"}`))

	require.Equal(t, models.KindGeneration, res.Kind)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", *res.Generation.OriginalImage)
	assert.Equal(t, "https://cdn.example.com/wm.png", *res.Generation.WatermarkedImage)
}

func TestNormalize_ImageGenerationNeedsBothImages(t *testing.T) {
	res := normalizer.Normalize(models.OpRobustGenerate, decode(t, `{"watermarked_image":"abc"}`))

	assert.Equal(t, models.KindRaw, res.Kind)
}

func TestNormalize_ImageDetection(t *testing.T) {
	t.Run("full verdict", func(t *testing.T) {
		res := normalizer.Normalize(models.OpRobustDetect, decode(t, `{
			"is_watermarked":true,"confidence":0.88,"bit_accuracy":0.953,
			"extracted_message":"1011","expected_message":"1011"}`))

		require.Equal(t, models.KindDetection, res.Kind)
		det := res.Detection
		assert.True(t, det.IsWatermarked)
		assert.InDelta(t, 0.953, *det.BitAccuracy, 1e-9)
		assert.Equal(t, "1011", *det.ExtractedMessage)
		assert.Nil(t, det.Correlation)
	})

	t.Run("negative verdict without bit accuracy", func(t *testing.T) {
		res := normalizer.Normalize(models.OpFreqDetect, decode(t, `{"is_watermarked":false,"method":"dwt"}`))

		require.Equal(t, models.KindDetection, res.Kind)
		assert.False(t, res.Detection.IsWatermarked)
		assert.Nil(t, res.Detection.BitAccuracy)
		assert.Equal(t, "dwt", *res.Detection.Method)
	})

	t.Run("nested detection", func(t *testing.T) {
		res := normalizer.Normalize(models.OpFreqDetect, decode(t, `{"detection":{"is_watermarked":true,"correlation":0.4}}`))

		require.Equal(t, models.KindDetection, res.Kind)
		assert.InDelta(t, 0.4, *res.Detection.Correlation, 1e-9)
	})

	t.Run("unparseable top level flag falls through to nested detection", func(t *testing.T) {
		res := normalizer.Normalize(models.OpFreqDetect, decode(t, `{"detected":{"regions":2},"detection":{"is_watermarked":true}}`))

		require.Equal(t, models.KindDetection, res.Kind)
		assert.True(t, res.Detection.IsWatermarked)
	})

	t.Run("non boolean flag is not a verdict", func(t *testing.T) {
		res := normalizer.Normalize(models.OpFreqDetect, decode(t, `{"is_watermarked":"maybe"}`))

		assert.Equal(t, models.KindRaw, res.Kind)
	})
}

func TestNormalize_Scan(t *testing.T) {
	t.Run("sentence likelihood", func(t *testing.T) {
		res := normalizer.Normalize(models.OpScanSentenceLikelihood, decode(t, `{
			"model":"gpt2","num_tokens":3,"perplexity":12.5,"total_likelihood":-7.1,
			"tokens":[["The",-1.2],["cat",-3.4],[1,2],{"token":"sat","score":-2.5}]}`))

		require.Equal(t, models.KindScan, res.Kind)
		scan := res.Scan
		assert.Equal(t, "gpt2", *scan.Model)
		assert.Equal(t, 3, *scan.NumTokens)
		assert.Equal(t, []models.TokenScore{{Token: "The", Score: -1.2}, {Token: "cat", Score: -3.4}, {Token: "sat", Score: -2.5}}, scan.Tokens)
	})

	t.Run("top k object sorted by score", func(t *testing.T) {
		res := normalizer.Normalize(models.OpScanTopK, decode(t, `{"k":3,"top_tokens":{"a":0.1,"b":0.7,"c":0.2}}`))

		require.Equal(t, models.KindScan, res.Kind)
		require.Len(t, res.Scan.TopTokens, 3)
		assert.Equal(t, "b", res.Scan.TopTokens[0].Token)
		assert.Equal(t, "a", res.Scan.TopTokens[2].Token)
	})

	t.Run("embeddings preview keeps first dims", func(t *testing.T) {
		vec := make([]float64, 768)
		for i := range vec {
			vec[i] = float64(i)
		}
		payload, err := json.Marshal(map[string]any{
			"words":      []string{"king", "queen"},
			"embeddings": map[string]any{"queen": [][]float64{vec}, "king": vec},
		})
		require.NoError(t, err)

		res := normalizer.Normalize(models.OpScanEmbeddings, decode(t, string(payload)))

		require.Equal(t, models.KindScan, res.Kind)
		require.Len(t, res.Scan.Embeddings, 2)
		assert.Equal(t, "king", res.Scan.Embeddings[0].Word)
		assert.Equal(t, "queen", res.Scan.Embeddings[1].Word)
		assert.Len(t, res.Scan.Embeddings[1].Values, normalizer.EmbeddingPreviewDims)
		assert.Equal(t, 768, res.Scan.Embeddings[1].Dimensions)
	})

	t.Run("graph candidates in priority order", func(t *testing.T) {
		res := normalizer.Normalize(models.OpScanAttentionVisualize, decode(t, `{
			"graph_generated":true,"plot_url":"https://x/plot.png","heatmap":"QUJD"}`))

		require.Equal(t, models.KindScan, res.Kind)
		assert.Equal(t, "data:image/png;base64,QUJD", *res.Scan.Graph)
		assert.True(t, *res.Scan.GraphGenerated)
	})

	t.Run("attention scores", func(t *testing.T) {
		res := normalizer.Normalize(models.OpScanAttention, decode(t, `{"sorted_scores":[["cat",0.5],["the",0.2]],"attention_output":"ok"}`))

		require.Equal(t, models.KindScan, res.Kind)
		assert.Len(t, res.Scan.AttentionScores, 2)
		assert.Equal(t, "ok", *res.Scan.AttentionOutput)
	})

	t.Run("nothing recognized", func(t *testing.T) {
		res := normalizer.Normalize(models.OpScanAttention, decode(t, `{"unexpected":[1,2,3]}`))

		assert.Equal(t, models.KindRaw, res.Kind)
	})
}

func TestNormalize_NeverPanics(t *testing.T) {
	inputs := []map[string]any{
		nil,
		{},
		{"value": []any{1, 2}},
		{"detection": "not an object"},
		{"tokens": "oops", "embeddings": []any{nil, "x"}, "top_tokens": []any{[]any{}}},
		{"is_watermarked": nil, "generated_text": 42},
	}
	ops := append(append([]models.Operation{}, models.WatermarkOperations...), models.ScanOperations...)
	for _, op := range ops {
		for _, raw := range inputs {
			assert.NotPanics(t, func() {
				res := normalizer.Normalize(op, raw)
				assert.NotNil(t, res)
				assert.Equal(t, op, res.Operation)
			})
		}
	}
}

func TestImageSource(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"iVBORw0KGgo=", "data:image/png;base64,iVBORw0KGgo="},
		{"http://host/a.png", "http://host/a.png"},
		{"HTTPS://host/a.png", "HTTPS://host/a.png"},
		{"data:image/jpeg;base64,AAA", "data:image/jpeg;base64,AAA"},
		{"  ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizer.ImageSource(tt.in), tt.in)
	}
}
