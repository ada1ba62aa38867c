package hara

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// generateObject runs one structured LLM call and decodes the JSON response
// into out.
func generateObject(ctx context.Context, llmClient gollem.LLMClient, systemPrompt, userPrompt string, schema *gollem.Parameter, out any) error {
	session, err := llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(schema),
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(userPrompt))
	if err != nil {
		return goerr.Wrap(err, "failed to generate content from LLM")
	}
	if len(resp.Texts) == 0 {
		return goerr.New("LLM returned no content")
	}

	if err := json.Unmarshal([]byte(resp.Texts[0]), out); err != nil {
		return goerr.Wrap(err, "failed to parse LLM response", goerr.V("response", resp.Texts[0]))
	}
	return nil
}

// generateText runs one plain-text LLM call with a system prompt.
func generateText(ctx context.Context, llmClient gollem.LLMClient, systemPrompt, userPrompt string) (string, error) {
	session, err := llmClient.NewSession(ctx,
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(userPrompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content from LLM")
	}
	if len(resp.Texts) == 0 {
		return "", goerr.New("LLM returned no content")
	}
	return resp.Texts[0], nil
}
