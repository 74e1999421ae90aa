package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Idempotent(t *testing.T) {
	cases := []string{
		"  Fatima   Ali  ",
		"فَاطِمَة عَلِي",
		"إبراهيم أحمد",
		"",
		"John-O'Brien 123",
	}

	for _, s := range cases {
		s := s
		t.Run(s, func(t *testing.T) {
			once := Normalize(s)
			twice := Normalize(once)
			assert.Equal(t, once, twice, "normalize must be idempotent")
		})
	}
}

func TestNormalize_StripsDiacriticsAndFoldsLetters(t *testing.T) {
	// Arabic diacritics (fatha/kasra/etc.) should vanish.
	withDiacritics := "فَاطِمَة"
	withoutDiacritics := "فاطمة"
	assert.Equal(t, Normalize(withoutDiacritics), Normalize(withDiacritics))

	// Alef variants fold to bare alef.
	assert.Equal(t, Normalize("ابراهيم"), Normalize("أبراهيم"))
	assert.Equal(t, Normalize("ابراهيم"), Normalize("إبراهيم"))
}

func TestNormalize_StripsNonWordCharsAndLowercases(t *testing.T) {
	got := Normalize("  JOHN   Smith-Jones!! ")
	assert.Equal(t, "john smith jones", got)
}

func TestTokens(t *testing.T) {
	require.Equal(t, []string{"fatima", "ali"}, Tokens(" Fatima  Ali "))
	assert.Nil(t, Tokens(""))
	assert.Nil(t, Tokens("   "))
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "12345", DigitsOnly("+1 (234) 5"))
	assert.Equal(t, "", DigitsOnly("abc"))
}

func TestNormalizeChildrenField(t *testing.T) {
	t.Run("already a sequence", func(t *testing.T) {
		got := NormalizeChildrenField([]string{"Omar", "  Layla "})
		assert.Equal(t, []string{"omar", "layla"}, got)
	})

	t.Run("delimited string with latin separators", func(t *testing.T) {
		got := NormalizeChildrenField("Omar,Layla;Sara|Huda")
		assert.Equal(t, []string{"omar", "layla", "sara", "huda"}, got)
	})

	t.Run("delimited string with arabic comma", func(t *testing.T) {
		got := NormalizeChildrenField("عمر،ليلى")
		assert.Equal(t, []string{"عمر", "ليلى"}, got)
	})

	t.Run("nil input", func(t *testing.T) {
		assert.Nil(t, NormalizeChildrenField(nil))
	})

	t.Run("[]any input from decoded JSON", func(t *testing.T) {
		got := NormalizeChildrenField([]any{"Omar", "Layla"})
		assert.Equal(t, []string{"omar", "layla"}, got)
	})
}
