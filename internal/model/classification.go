package model

// Classification is the content-warning category of a Warning.
type Classification string

// ClassificationNone is not a real category. Submitting it on an edit deletes the warning.
const ClassificationNone Classification = "none"

// Classifications lists every accepted category in display order.
var Classifications = []Classification{
	"Animal Death",
	"Blood",
	"Body Horror",
	"Child Abuse",
	"Domestic Violence",
	"Drug Use",
	"Flashing Lights",
	"Gore",
	"Gun Violence",
	"Jump Scares",
	"Kidnapping",
	"Needles",
	"Racism",
	"Self Harm",
	"Sexual Assault",
	"Spiders",
	"Suicide",
	"Torture",
	"Vomit",
}

// classificationDescriptions backs the /classifications/description lookup.
var classificationDescriptions = map[Classification]string{
	"Animal Death":      "An animal is killed or dies on screen or is shown dead.",
	"Blood":             "Visible blood, including from injuries or medical scenes.",
	"Body Horror":       "Graphic transformation, mutilation or distortion of the human body.",
	"Child Abuse":       "Physical, emotional or sexual abuse of a child, shown or described.",
	"Domestic Violence": "Violence or abuse between partners or family members.",
	"Drug Use":          "Consumption of illegal or recreational drugs.",
	"Flashing Lights":   "Strobing or rapidly flashing lights that may affect photosensitive viewers.",
	"Gore":              "Explicit depiction of severe wounds, dismemberment or viscera.",
	"Gun Violence":      "Firearms are used to threaten, injure or kill.",
	"Jump Scares":       "Sudden loud noises or images intended to startle.",
	"Kidnapping":        "A character is abducted or held against their will.",
	"Needles":           "Injections, syringes or needles piercing skin.",
	"Racism":            "Racial slurs, discrimination or racially motivated violence.",
	"Self Harm":         "A character deliberately injures themselves.",
	"Sexual Assault":    "Sexual violence or non-consensual sexual contact, shown or implied.",
	"Spiders":           "Spiders appear on screen.",
	"Suicide":           "Suicide or a suicide attempt, shown or discussed.",
	"Torture":           "Deliberate infliction of severe pain on a captive.",
	"Vomit":             "A character vomits on screen.",
}

// Valid reports whether c belongs to the closed set of categories.
// ClassificationNone is not valid.
func (c Classification) Valid() bool {
	_, ok := classificationDescriptions[c]
	return ok
}

// Description returns the human-readable description of c and whether c is known.
func (c Classification) Description() (string, bool) {
	d, ok := classificationDescriptions[c]
	return d, ok
}
