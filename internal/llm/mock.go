package llm

import "context"

// MockClient permite tests sin llamar a un LLM real.
// Si Responses tiene elementos, se consumen en orden antes de Response.
type MockClient struct {
	Response  string
	Responses []string
	Err       error
	Embedding []float32
	Prompts   []string
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) > 0 {
		r := m.Responses[0]
		m.Responses = m.Responses[1:]
		return r, nil
	}
	return m.Response, nil
}

func (m *MockClient) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Embedding != nil {
		return m.Embedding, nil
	}
	return []float32{0.1, 0.2, 0.3}, nil
}
