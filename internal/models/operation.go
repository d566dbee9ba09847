package models

import "fmt"

// Operation identifies one analysis action a demo form can trigger.
type Operation string

const (
	OpTextGenerate   Operation = "text-generate"
	OpTextDetect     Operation = "text-detect"
	OpFreqGenerate   Operation = "freq-generate"
	OpFreqDetect     Operation = "freq-detect"
	OpRobustGenerate Operation = "robust-generate"
	OpRobustDetect   Operation = "robust-detect"

	// Black Box Scan operations.
	OpScanSentenceLikelihood Operation = "scan-sentence-likelihood"
	OpScanTopK               Operation = "scan-top-k"
	OpScanEmbeddings         Operation = "scan-embeddings"
	OpScanAttention          Operation = "scan-attention"
	OpScanAttentionVisualize Operation = "scan-attention-visualize"
)

// WatermarkOperations lists the AI Watermarking demo operations in page order.
var WatermarkOperations = []Operation{
	OpTextGenerate, OpTextDetect,
	OpFreqGenerate, OpFreqDetect,
	OpRobustGenerate, OpRobustDetect,
}

// ScanOperations lists the Black Box Scan demo operations in page order.
var ScanOperations = []Operation{
	OpScanSentenceLikelihood, OpScanTopK, OpScanEmbeddings,
	OpScanAttention, OpScanAttentionVisualize,
}

// ParseOperation validates a raw operation identifier.
func ParseOperation(raw string) (Operation, error) {
	op := Operation(raw)
	for _, known := range WatermarkOperations {
		if op == known {
			return op, nil
		}
	}
	for _, known := range ScanOperations {
		if op == known {
			return op, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperation, raw)
}

// IsText reports whether the operation works on text rather than images.
func (o Operation) IsText() bool {
	return o == OpTextGenerate || o == OpTextDetect
}

// IsImage reports whether the operation produces or inspects images.
func (o Operation) IsImage() bool {
	switch o {
	case OpFreqGenerate, OpFreqDetect, OpRobustGenerate, OpRobustDetect:
		return true
	}
	return false
}

// IsScan reports whether the operation belongs to the Black Box Scan demo.
func (o Operation) IsScan() bool {
	for _, known := range ScanOperations {
		if o == known {
			return true
		}
	}
	return false
}

// Label is the human-readable operation name.
func (o Operation) Label() string {
	switch o {
	case OpTextGenerate:
		return "Text Generation"
	case OpTextDetect:
		return "Text Detection"
	case OpFreqGenerate:
		return "Frequency-Domain Generation"
	case OpFreqDetect:
		return "Frequency-Domain Detection"
	case OpRobustGenerate:
		return "Robust Generation"
	case OpRobustDetect:
		return "Robust Detection"
	case OpScanSentenceLikelihood:
		return "Sentence Likelihood Analysis"
	case OpScanTopK:
		return "Top-K Token Prediction"
	case OpScanEmbeddings:
		return "Word Embeddings"
	case OpScanAttention:
		return "Attention Analysis"
	case OpScanAttentionVisualize:
		return "Attention Visualization"
	}
	return string(o)
}

// FreqMethod is the frequency-domain watermarking method.
type FreqMethod string

const (
	MethodSIFT FreqMethod = "sift"
	MethodDWT  FreqMethod = "dwt"
	MethodDCT  FreqMethod = "dct"
)

// FreqMethods lists the accepted methods; the first is the default.
var FreqMethods = []FreqMethod{MethodSIFT, MethodDWT, MethodDCT}

// ParseFreqMethod returns the method, defaulting to sift for a blank value.
func ParseFreqMethod(raw string) (FreqMethod, error) {
	if raw == "" {
		return MethodSIFT, nil
	}
	for _, m := range FreqMethods {
		if FreqMethod(raw) == m {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown method %q", ErrInvalidInput, raw)
}
