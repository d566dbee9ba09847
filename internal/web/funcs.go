package web

import (
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"blackboxscan/internal/models"
)

// NotAvailable is rendered for absent optional values.
const NotAvailable = "N/A"

// DescriptionPreviewRunes is the length after which listing descriptions are
// collapsed behind a "read more" toggle.
const DescriptionPreviewRunes = 150

// FuncMap returns the helpers available to every template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"percent":     Percent,
		"decimal":     Decimal,
		"fixed4":      func(f float64) string { return fmt.Sprintf("%.4f", f) },
		"intOrNA":     IntOrNA,
		"textOrNA":    TextOrNA,
		"yesNo":       YesNo,
		"isLong":      IsLong,
		"descHead":    DescriptionHead,
		"descRest":    DescriptionRest,
		"barWidth":    BarWidth,
		"date":        func(t time.Time) string { return t.Format("Jan 2, 2006") },
		"typeLabel":   func(t models.ContributionType) string { return t.Label() },
		"deref":       func(s *string) string { return derefString(s) },
		"imgSrc":      ImageURL,
		"joinFloats":  JoinFloats,
		"upper":       strings.ToUpper,
		"statusClass": StatusClass,
	}
}

// Percent renders a 0..1 fraction as a percentage with two decimals.
func Percent(f *float64) string {
	if f == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f%%", *f*100)
}

// Decimal renders an optional number with four decimals.
func Decimal(f *float64) string {
	if f == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%.4f", *f)
}

// IntOrNA renders an optional integer.
func IntOrNA(i *int) string {
	if i == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%d", *i)
}

// TextOrNA renders an optional string.
func TextOrNA(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return NotAvailable
	}
	return *s
}

// YesNo renders an optional boolean.
func YesNo(b *bool) string {
	if b == nil {
		return NotAvailable
	}
	if *b {
		return "Yes"
	}
	return "No"
}

// IsLong reports whether s exceeds the preview length.
func IsLong(s string) bool {
	return utf8.RuneCountInString(s) > DescriptionPreviewRunes
}

// SplitDescription cuts s after DescriptionPreviewRunes runes. head+rest
// always equals s; rest is empty for short descriptions.
func SplitDescription(s string) (head, rest string) {
	if !IsLong(s) {
		return s, ""
	}
	runes := []rune(s)
	return string(runes[:DescriptionPreviewRunes]), string(runes[DescriptionPreviewRunes:])
}

// DescriptionHead returns the part of s shown before "read more".
func DescriptionHead(s string) string {
	head, _ := SplitDescription(s)
	return head
}

// DescriptionRest returns the part of s revealed by "read more".
func DescriptionRest(s string) string {
	_, rest := SplitDescription(s)
	return rest
}

// BarWidth renders a 0..1 score as a CSS width clamped to 0..100%.
func BarWidth(score float64) template.CSS {
	pct := score * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return template.CSS(fmt.Sprintf("width: %.1f%%", pct))
}

// ImageURL marks a normalized image source as safe for an src attribute.
// Only http(s) URLs and data:image URLs pass; anything else renders empty.
func ImageURL(s *string) template.URL {
	if s == nil {
		return ""
	}
	lower := strings.ToLower(*s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "data:image/") {
		return template.URL(*s)
	}
	return ""
}

// JoinFloats renders embedding values compactly.
func JoinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%.4f", v)
	}
	return strings.Join(parts, ", ")
}

// StatusClass picks the badge style of a text detection status.
func StatusClass(status string) string {
	s := strings.ToUpper(status)
	switch {
	case strings.Contains(s, "NO WATERMARK") || strings.Contains(s, "NOT"):
		return "negative"
	case strings.Contains(s, "WATERMARK") || strings.Contains(s, "DETECTED"):
		return "positive"
	}
	return "neutral"
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
