package models

// Annotation is what the user writes down for one player in one match.
// Every field is nullable; an empty form field is stored as null.
type Annotation struct {
	FeudalTime     *string `json:"feudal-time"`
	FeudalLandmark *string `json:"feudal-dropdown"`
	CastleTime     *string `json:"castle-time"`
	CastleLandmark *string `json:"castle-dropdown"`
	EmpireTime     *string `json:"empire-time"`
	EmpireLandmark *string `json:"empire-dropdown"`
	Strategy       *string `json:"strategy-input"`
	Improve        *string `json:"improve-input"`
}

// Form field keys, in display order.
const (
	FieldFeudalTime     = "feudal-time"
	FieldFeudalLandmark = "feudal-dropdown"
	FieldCastleTime     = "castle-time"
	FieldCastleLandmark = "castle-dropdown"
	FieldEmpireTime     = "empire-time"
	FieldEmpireLandmark = "empire-dropdown"
	FieldStrategy       = "strategy-input"
	FieldImprove        = "improve-input"
)

var AnnotationFields = []string{
	FieldFeudalTime,
	FieldFeudalLandmark,
	FieldCastleTime,
	FieldCastleLandmark,
	FieldEmpireTime,
	FieldEmpireLandmark,
	FieldStrategy,
	FieldImprove,
}

// Field returns a pointer to the slot for key, or nil for unknown keys.
func (a *Annotation) Field(key string) **string {
	switch key {
	case FieldFeudalTime:
		return &a.FeudalTime
	case FieldFeudalLandmark:
		return &a.FeudalLandmark
	case FieldCastleTime:
		return &a.CastleTime
	case FieldCastleLandmark:
		return &a.CastleLandmark
	case FieldEmpireTime:
		return &a.EmpireTime
	case FieldEmpireLandmark:
		return &a.EmpireLandmark
	case FieldStrategy:
		return &a.Strategy
	case FieldImprove:
		return &a.Improve
	}
	return nil
}

// Value is the display value of key; nil annotations and nil fields read as "".
func (a *Annotation) Value(key string) string {
	if a == nil {
		return ""
	}
	if slot := a.Field(key); slot != nil && *slot != nil {
		return **slot
	}
	return ""
}
