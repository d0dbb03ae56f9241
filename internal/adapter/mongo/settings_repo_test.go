package mongo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unhinged-listings/listing-service/internal/entity"
	"go.mongodb.org/mongo-driver/bson"
)

// The Upsert $set payload is the struct itself, so every field must marshal
// even when empty. A cleared value that vanishes from the document would
// silently keep the previously stored one.
func TestSiteSettings_ClearedFieldSurvivesMarshal(t *testing.T) {
	settings := entity.DefaultSiteSettings()
	settings.Tagline = ""
	settings.ContactText = ""

	raw, err := bson.Marshal(settings)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))

	for _, key := range []string{
		"siteTitle", "subtitle", "tagline", "description", "categories",
		"safetyTips", "footerText", "footerLinks", "aboutTitle", "aboutIntro",
		"aboutProcess", "aboutQuote", "aboutQuoteSource", "aboutPhilosophy",
		"aboutAuthenticity", "aboutWarning", "contactText", "updatedAt",
	} {
		assert.Containsf(t, doc, key, "field %q must be written even when empty", key)
	}
	assert.Equal(t, "", doc["tagline"])
	assert.Equal(t, "", doc["contactText"])
}

func TestSiteSettings_JSONIncludesUpdatedAt(t *testing.T) {
	raw, err := json.Marshal(entity.DefaultSiteSettings())
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Contains(t, body, "updatedAt")
}
