package analyzer

// DefaultTemperature is the sampling temperature used for every circuit analysis.
const DefaultTemperature = 0.2

// AnalysisOptions configures the analyzer
type AnalysisOptions struct {
	Model       string
	Temperature float64
	Template    PromptTemplate
}

// DefaultOptions returns the default template at DefaultTemperature
func DefaultOptions(model string) AnalysisOptions {
	return AnalysisOptions{
		Model:       model,
		Temperature: DefaultTemperature,
		Template:    DefaultTemplate(),
	}
}

// WithTemplate replaces the prompt template
func (opts AnalysisOptions) WithTemplate(tmpl PromptTemplate) AnalysisOptions {
	opts.Template = tmpl
	return opts
}
