package app

import (
	"net/url"
	"strings"

	"example/aoe4-reviewer/app/models"
)

// FieldName is the form input name for one player's annotation field.
func FieldName(profileID, field string) string {
	return profileID + "." + field
}

// CollectAnnotations reads every player's inputs back out of a submitted
// form. Empty and missing fields become nil. The result has one entry per
// player in the match so a later load finds a value for everyone.
func CollectAnnotations(m *models.Match, form url.Values) map[string]*models.Annotation {
	out := map[string]*models.Annotation{}
	for _, u := range flattenTeams(m, "") {
		a := &models.Annotation{}
		for _, field := range models.AnnotationFields {
			v := form.Get(FieldName(u.ProfileID, field))
			if strings.TrimSpace(v) == "" {
				continue
			}
			*a.Field(field) = &v
		}
		out[u.ProfileID] = a
	}
	return out
}
