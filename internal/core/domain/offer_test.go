package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewJobOffer tests offer construction and length validation
func TestNewJobOffer(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{
			name: "valid offer",
			text: "We are hiring a senior backend engineer to build our payment platform in Berlin.",
		},
		{
			name:    "too short",
			text:    "Engineer wanted",
			wantErr: ErrOfferTooShort,
		},
		{
			name:    "empty",
			text:    "",
			wantErr: ErrOfferTooShort,
		},
		{
			name:    "whitespace padding does not count",
			text:    "   short   " + strings.Repeat(" ", 100),
			wantErr: ErrOfferTooShort,
		},
		{
			name: "exactly at minimum",
			text: strings.Repeat("a", MinOfferLength),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer, err := NewJobOffer(tt.text)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.True(t, errors.Is(err, ErrInvalidInput),
					"validation failures must map to ErrInvalidInput")
				assert.True(t, offer.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(tt.text), offer.Text())
			assert.False(t, offer.IsZero())
		})
	}
}

// TestJobOffer_Excerpt tests excerpt truncation
func TestJobOffer_Excerpt(t *testing.T) {
	offer, err := NewJobOffer(strings.Repeat("x", 400))
	require.NoError(t, err)

	assert.Len(t, offer.Excerpt(300), 300)
	assert.Equal(t, offer.Text(), offer.Excerpt(400))
	assert.Equal(t, offer.Text(), offer.Excerpt(1000))
	assert.Empty(t, offer.Excerpt(0))
	assert.Empty(t, offer.Excerpt(-1))
}

// TestParseContentType tests content type parsing
func TestParseContentType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ContentType
		wantErr bool
	}{
		{"email", "email", ContentTypeEmail, false},
		{"linkedin", "linkedin", ContentTypeLinkedIn, false},
		{"letter", "letter", ContentTypeLetter, false},
		{"uppercase", "EMAIL", ContentTypeEmail, false},
		{"padded", "  letter ", ContentTypeLetter, false},
		{"unknown", "tweet", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseContentType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownContentType))
				assert.True(t, errors.Is(err, ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestContentType_RulesetName tests ruleset naming per content type
func TestContentType_RulesetName(t *testing.T) {
	assert.Equal(t, "email", ContentTypeEmail.RulesetName())
	assert.Equal(t, "linkedin", ContentTypeLinkedIn.RulesetName())
	assert.Equal(t, "letter", ContentTypeLetter.RulesetName())
}

// TestAllContentTypes tests the supported type list is complete and valid
func TestAllContentTypes(t *testing.T) {
	all := AllContentTypes()
	assert.Len(t, all, 3)
	for _, ct := range all {
		assert.True(t, ct.IsValid())
	}
}
