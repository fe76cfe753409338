// Package translate turns source-language listing titles into the target
// language through a machine translation backend.
package translate

import "context"

// Translator translates text from an unknown source language
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Func adapts a plain function to Translator
type Func func(ctx context.Context, text, target string) (string, error)

// Translate calls f
func (f Func) Translate(ctx context.Context, text, target string) (string, error) {
	return f(ctx, text, target)
}

// Identity returns text unchanged; used when no backend is configured
var Identity Translator = Func(func(_ context.Context, text, _ string) (string, error) {
	return text, nil
})
