package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Language
	}{
		{"english", "tell me about Gir cows", English},
		{"kannada", "ಗಿರ್ ಹಸು ಬಗ್ಗೆ ತಿಳಿಸಿ", Kannada},
		{"bengali", "গির গরু সম্পর্কে বলুন", Bengali},
		{"digits only", "12345 !?", Unknown},
		{"empty", "", Unknown},
		{"cjk", "牛について", Unknown},
		{"mixed script takes table order", "Gir गाय", Hindi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.text))
		})
	}
}

func TestDetectDevanagariIsAmbiguous(t *testing.T) {
	got := Detect("यह गाय अच्छी है")
	assert.Contains(t, []Language{Hindi, Marathi}, got)
}

func TestDetectWithLocale(t *testing.T) {
	devanagari := "ही गाय चांगली आहे"

	assert.Equal(t, Marathi, DetectWithLocale(devanagari, "mr"))
	assert.Equal(t, Marathi, DetectWithLocale(devanagari, "mr-IN"))
	assert.Equal(t, Hindi, DetectWithLocale(devanagari, "hi"))
	assert.Equal(t, Detect(devanagari), DetectWithLocale(devanagari, ""))
	assert.Equal(t, Detect(devanagari), DetectWithLocale(devanagari, "de"))

	// a locale from another script never overrides the detected script
	assert.Equal(t, English, DetectWithLocale("tell me about Gir", "mr"))
	assert.Equal(t, Unknown, DetectWithLocale("123", "mr"))
}
