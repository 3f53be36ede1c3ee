package ports

import "context"

// CompletionRequest es la petición al colaborador de clasificación de texto.
type CompletionRequest struct {
	Prompt          string
	Temperature     float64
	MaxOutputTokens int
}

// Completer es el colaborador externo de clasificación (LLM). Devuelve el
// texto crudo de la respuesta; el parsing y la validación de esquema son
// responsabilidad del caller.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
