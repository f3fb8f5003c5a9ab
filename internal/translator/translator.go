package translator

import "context"

// Translator converts text between languages. Stateless: one call per
// (segment, target language) pair.
type Translator interface {
	// Translate returns text rendered in the target language. Source and
	// target are BCP 47 tags; both bare ("en") and region-qualified
	// ("es-ES") codes are accepted.
	Translate(ctx context.Context, text, source, target string) (string, error)

	Close() error
}
