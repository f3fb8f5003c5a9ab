package translator

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleTranslator calls the Google Cloud Translation API (v2, NMT model).
type GoogleTranslator struct {
	client *translate.Client
	model  string
}

func NewGoogleTranslator(ctx context.Context, credentialsFile, model string) (*GoogleTranslator, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create translate client: %w", err)
	}
	return &GoogleTranslator{client: client, model: model}, nil
}

func (g *GoogleTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	sourceTag, err := language.Parse(source)
	if err != nil {
		return "", fmt.Errorf("invalid source language %q: %w", source, err)
	}
	targetTag, err := language.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid target language %q: %w", target, err)
	}

	results, err := g.client.Translate(ctx, []string{text}, targetTag, &translate.Options{
		Source: sourceTag,
		Format: translate.Text,
		Model:  g.model,
	})
	if err != nil {
		return "", fmt.Errorf("translation to %s failed: %w", target, err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("translation to %s returned no result", target)
	}
	return results[0].Text, nil
}

func (g *GoogleTranslator) Close() error {
	return g.client.Close()
}
