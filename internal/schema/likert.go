package schema

// LikertPreset selects the label set shown next to the 1..N buttons.
type LikertPreset string

const (
	// PresetSatisfaction ranges from "Muy malo" to "Excelente".
	PresetSatisfaction LikertPreset = "satisfaction"
	// PresetAgreement ranges from strong disagreement to strong agreement.
	PresetAgreement LikertPreset = "agreement"
	// PresetFrequency ranges from "Nunca" to "Siempre".
	PresetFrequency LikertPreset = "frequency"
)

var likertLabels = map[string]map[LikertPreset][]string{
	"es": {
		PresetSatisfaction: {"Muy malo", "Malo", "Regular", "Bueno", "Excelente"},
		PresetAgreement:    {"Totalmente en desacuerdo", "En desacuerdo", "Neutral", "De acuerdo", "Totalmente de acuerdo"},
		PresetFrequency:    {"Nunca", "Rara vez", "A veces", "Casi siempre", "Siempre"},
	},
	"en": {
		PresetSatisfaction: {"Very bad", "Bad", "Neutral", "Good", "Excellent"},
		PresetAgreement:    {"Strongly disagree", "Disagree", "Neutral", "Agree", "Strongly agree"},
		PresetFrequency:    {"Never", "Rarely", "Sometimes", "Often", "Always"},
	},
}

// LikertScaleLabels returns the labels for a likert question in the given
// language: the question's own labels when authored, otherwise the preset's
// label set (defaulting to satisfaction). The slice may be shorter than the
// scale for non-default scales; callers render missing labels as empty.
func LikertScaleLabels(q *Question, lang string) []string {
	if len(q.Labels) > 0 {
		return q.Labels
	}
	byPreset, ok := likertLabels[lang]
	if !ok {
		byPreset = likertLabels["es"]
	}
	preset := q.LikertPreset
	if _, ok := byPreset[preset]; !ok {
		preset = PresetSatisfaction
	}
	return byPreset[preset]
}
