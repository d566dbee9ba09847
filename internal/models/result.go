package models

// ResultKind discriminates AnalysisResult variants.
type ResultKind string

const (
	KindGeneration    ResultKind = "generation"
	KindDetection     ResultKind = "detection"
	KindTextDetection ResultKind = "text_detection"
	KindScan          ResultKind = "scan"
	KindRaw           ResultKind = "raw"
	KindError         ResultKind = "error"
)

// AnalysisResult is the view model of one completed dispatch. Exactly one of
// the variant pointers matching Kind is set. A new result replaces the previous
// one; results are never merged.
type AnalysisResult struct {
	Kind      ResultKind `json:"kind"`
	Operation Operation  `json:"operation"`

	Generation    *GenerationResult    `json:"generation,omitempty"`
	Detection     *DetectionResult     `json:"detection,omitempty"`
	TextDetection *TextDetectionResult `json:"textDetection,omitempty"`
	Scan          *ScanResult          `json:"scan,omitempty"`
	Error         *ErrorResult         `json:"error,omitempty"`

	// RawJSON is the indented service response, shown for every non-error
	// result and as the whole body of a raw passthrough.
	RawJSON string `json:"raw,omitempty"`
}

// GenerationResult holds generated text and/or a side-by-side image pair.
// Image fields hold ready-to-use <img> sources.
type GenerationResult struct {
	GeneratedText    *string `json:"generatedText,omitempty"`
	WatermarkedImage *string `json:"watermarkedImage,omitempty"`
	OriginalImage    *string `json:"originalImage,omitempty"`
}

// DetectionResult is an image watermark detection verdict.
// Fractions (Confidence, BitAccuracy) are 0..1.
type DetectionResult struct {
	IsWatermarked    bool     `json:"isWatermarked"`
	Confidence       *float64 `json:"confidence,omitempty"`
	BitAccuracy      *float64 `json:"bitAccuracy,omitempty"`
	Correlation      *float64 `json:"correlation,omitempty"`
	PValue           *float64 `json:"pValue,omitempty"`
	Method           *string  `json:"method,omitempty"`
	StatisticalTest  *bool    `json:"statisticalTest,omitempty"`
	ExtractedMessage *string  `json:"extractedMessage,omitempty"`
	ExpectedMessage  *string  `json:"expectedMessage,omitempty"`
}

// TextDetectionResult is a text watermark detection verdict.
type TextDetectionResult struct {
	Status         string   `json:"status"`
	Confidence     *float64 `json:"confidence,omitempty"`
	Z              *float64 `json:"z,omitempty"`
	P              *float64 `json:"p,omitempty"`
	TokensAnalyzed *int     `json:"tokensAnalyzed,omitempty"`
	MeanG          *float64 `json:"meanG,omitempty"`
	Explanation    *string  `json:"explanation,omitempty"`
	Report         *string  `json:"report,omitempty"`
}

// TokenScore pairs a token with a likelihood, probability or attention score.
type TokenScore struct {
	Token string  `json:"token"`
	Score float64 `json:"score"`
}

// EmbeddingPreview holds the leading dimensions of a word embedding.
type EmbeddingPreview struct {
	Word       string    `json:"word"`
	Values     []float64 `json:"values"`
	Dimensions int       `json:"dimensions"`
}

// ScanResult is the output of a Black Box Scan operation.
type ScanResult struct {
	Model           *string            `json:"model,omitempty"`
	Input           *string            `json:"input,omitempty"`
	NumTokens       *int               `json:"numTokens,omitempty"`
	Perplexity      *float64           `json:"perplexity,omitempty"`
	TotalLikelihood *float64           `json:"totalLikelihood,omitempty"`
	Tokens          []TokenScore       `json:"tokens,omitempty"`
	K               *int               `json:"k,omitempty"`
	TopTokens       []TokenScore       `json:"topTokens,omitempty"`
	Words           []string           `json:"words,omitempty"`
	Embeddings      []EmbeddingPreview `json:"embeddings,omitempty"`
	AttentionScores []TokenScore       `json:"attentionScores,omitempty"`
	AttentionOutput *string            `json:"attentionOutput,omitempty"`
	GraphGenerated  *bool              `json:"graphGenerated,omitempty"`
	Graph           *string            `json:"graph,omitempty"`
}

// ErrorCode classifies a failed analysis.
type ErrorCode string

const (
	ErrorCodeValidation       ErrorCode = "validation"
	ErrorCodeBusy             ErrorCode = "busy"
	ErrorCodeUnknownOperation ErrorCode = "unknown_operation"
	ErrorCodeUpstream         ErrorCode = "upstream"
)

// ErrorResult carries a user-facing failure message.
type ErrorResult struct {
	Message string    `json:"message"`
	Code    ErrorCode `json:"code"`
	// Validation is true when the failure happened before any network call.
	Validation bool `json:"validation,omitempty"`
}

// NewErrorResult wraps a message into an error variant.
func NewErrorResult(op Operation, message string, code ErrorCode) *AnalysisResult {
	return &AnalysisResult{
		Kind:      KindError,
		Operation: op,
		Error:     &ErrorResult{Message: message, Code: code, Validation: code == ErrorCodeValidation},
	}
}
