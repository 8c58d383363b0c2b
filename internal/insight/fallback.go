package insight

import "context"

// WithFallback chains two providers: primary first, secondary on any error.
// Wiring the rules provider as secondary gives callers a Simplify and
// AnalyzeSentiment that never fail.
func WithFallback(primary, secondary Provider) Provider {
	return &fallbackProvider{primary: primary, secondary: secondary}
}

type fallbackProvider struct {
	primary   Provider
	secondary Provider
}

func (f *fallbackProvider) Simplify(ctx context.Context, text, language, educationLevel string) (string, error) {
	out, err := f.primary.Simplify(ctx, text, language, educationLevel)
	if err != nil {
		return f.secondary.Simplify(ctx, text, language, educationLevel)
	}
	return out, nil
}

func (f *fallbackProvider) AnalyzeSentiment(ctx context.Context, text, language string) (Sentiment, error) {
	out, err := f.primary.AnalyzeSentiment(ctx, text, language)
	if err != nil {
		return f.secondary.AnalyzeSentiment(ctx, text, language)
	}
	return out, nil
}

func (f *fallbackProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	out, err := f.primary.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return f.secondary.Generate(ctx, systemPrompt, userPrompt)
	}
	return out, nil
}
