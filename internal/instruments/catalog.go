package instruments

// Question is one instrument item as served to clients.
type Question struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ScaleOption is one answer option on an instrument's response scale.
type ScaleOption struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// InstrumentCatalog describes one instrument for the frontend.
type InstrumentCatalog struct {
	Name      string        `json:"name"`
	Questions []Question    `json:"questions"`
	Scale     []ScaleOption `json:"scale"`
}

// Catalog bundles all three instruments.
type Catalog struct {
	PHQ2 InstrumentCatalog `json:"phq2"`
	GAD2 InstrumentCatalog `json:"gad2"`
	WHO5 InstrumentCatalog `json:"who5"`
}

var frequencyScale = []ScaleOption{
	{Value: 0, Label: "Not at all"},
	{Value: 1, Label: "Several days"},
	{Value: 2, Label: "More than half the days"},
	{Value: 3, Label: "Nearly every day"},
}

var wellbeingScale = []ScaleOption{
	{Value: 0, Label: "At no time"},
	{Value: 1, Label: "Some of the time"},
	{Value: 2, Label: "Less than half the time"},
	{Value: 3, Label: "More than half the time"},
	{Value: 4, Label: "Most of the time"},
	{Value: 5, Label: "All of the time"},
}

// Questions returns the full instrument catalog served at the API.
func Questions() Catalog {
	return Catalog{
		PHQ2: InstrumentCatalog{
			Name: "PHQ-2 Depression Screening",
			Questions: []Question{
				{ID: "phq2_q1", Text: "Over the past 2 weeks, how often have you had little interest or pleasure in doing things?"},
				{ID: "phq2_q2", Text: "Over the past 2 weeks, how often have you felt down, depressed, or hopeless?"},
			},
			Scale: frequencyScale,
		},
		GAD2: InstrumentCatalog{
			Name: "GAD-2 Anxiety Screening",
			Questions: []Question{
				{ID: "gad2_q1", Text: "Over the past 2 weeks, how often have you felt nervous, anxious, or on edge?"},
				{ID: "gad2_q2", Text: "Over the past 2 weeks, how often have you not been able to stop or control worrying?"},
			},
			Scale: frequencyScale,
		},
		WHO5: InstrumentCatalog{
			Name: "WHO-5 Wellbeing Index",
			Questions: []Question{
				{ID: "who5_q1", Text: "Over the past 2 weeks, I have felt cheerful and in good spirits"},
				{ID: "who5_q2", Text: "Over the past 2 weeks, I have felt active and energetic"},
				{ID: "who5_q3", Text: "Over the past 2 weeks, I have felt calm and relaxed"},
			},
			Scale: wellbeingScale,
		},
	}
}
