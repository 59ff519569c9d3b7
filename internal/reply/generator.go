package reply

import "context"

// PlaceholderText es la respuesta fija mientras no exista un motor real.
const PlaceholderText = "recieved and returned"

// Generator deriva el texto de respuesta a partir del mensaje del usuario.
// Las implementaciones no deben tener efectos secundarios.
type Generator interface {
	Generate(ctx context.Context, userText string) (string, error)
}

// Func adapta una funcion pura text -> text a Generator.
type Func func(userText string) string

func (f Func) Generate(_ context.Context, userText string) (string, error) {
	return f(userText), nil
}

// Static devuelve siempre el mismo texto.
type Static struct {
	Text string
}

// NewStatic usa PlaceholderText cuando text esta vacio.
func NewStatic(text string) Static {
	if text == "" {
		text = PlaceholderText
	}
	return Static{Text: text}
}

func (s Static) Generate(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.Text, nil
}
