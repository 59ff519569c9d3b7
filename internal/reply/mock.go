package reply

import "context"

// MockGenerator permite tests sin un motor de respuestas real.
type MockGenerator struct {
	Response string
	Err      error
	Calls    []string
}

func (m *MockGenerator) Generate(_ context.Context, userText string) (string, error) {
	m.Calls = append(m.Calls, userText)
	return m.Response, m.Err
}
