package content

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrString(s string) *string {
	return &s
}

func TestFingerprint_deterministic(t *testing.T) {
	inputs := []string{"", "a", "Intro to ML | basics", "日本語のコース"}

	for _, in := range inputs {
		assert.Equal(t, Fingerprint(in), Fingerprint(in), "same input must yield same digest")
	}
}

func TestFingerprint_normalizesTrimAndCase(t *testing.T) {
	assert.Equal(t, Fingerprint("x"), Fingerprint(" X "))
	assert.Equal(t, Fingerprint("machine learning"), Fingerprint("  Machine Learning\n"))
	assert.NotEqual(t, Fingerprint("machine learning"), Fingerprint("machinelearning"))
}

func TestFingerprint_isSha256Hex(t *testing.T) {
	digest := Fingerprint(" Intro to ML | basics | Data Science | ml, ai ")

	sum := sha256.Sum256([]byte("intro to ml | basics | data science | ml, ai"))
	assert.Equal(t, hex.EncodeToString(sum[:]), digest)
	assert.Len(t, digest, 64)
}

func TestChanged(t *testing.T) {
	hash := Fingerprint("Intro to ML")

	t.Run("nil existing hash counts as changed", func(t *testing.T) {
		assert.True(t, Changed("Intro to ML", nil))
	})

	t.Run("empty existing hash counts as changed", func(t *testing.T) {
		empty := ""
		assert.True(t, Changed("Intro to ML", &empty))
	})

	t.Run("matching hash is unchanged", func(t *testing.T) {
		assert.False(t, Changed("Intro to ML", &hash))
		// Normalization means case and padding differences don't count as changes.
		assert.False(t, Changed("  intro to ml ", &hash))
	})

	t.Run("different content is changed", func(t *testing.T) {
		assert.True(t, Changed("Intro to Go", &hash))
	})
}

func TestAssembleCourseText(t *testing.T) {
	t.Run("all fields present", func(t *testing.T) {
		got := AssembleCourseText(
			"Intro to ML",
			ptrString("basics"),
			ptrString("Data Science"),
			[]string{"ml", "ai"},
		)
		require.Equal(t, "Intro to ML | basics | Data Science | ml, ai", got)
	})

	t.Run("empty fields are dropped", func(t *testing.T) {
		got := AssembleCourseText("Intro to ML", nil, ptrString("  "), nil)
		assert.Equal(t, "Intro to ML", got)
	})

	t.Run("blank tags are dropped", func(t *testing.T) {
		got := AssembleCourseText("Go", nil, nil, []string{" ", "backend", ""})
		assert.Equal(t, "Go | backend", got)
	})

	t.Run("whitespace runs collapse to single spaces", func(t *testing.T) {
		got := AssembleCourseText("Intro\tto   ML", ptrString("the\n\nbasics"), nil, nil)
		assert.Equal(t, "Intro to ML | the basics", got)
	})

	t.Run("assembly and fingerprint agree for worker and change check", func(t *testing.T) {
		text := AssembleCourseText("Intro to ML", ptrString("basics"), ptrString("Data Science"), []string{"ml", "ai"})
		hash := Fingerprint(text)

		assert.False(t, Changed(text, &hash))
	})
}
