package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero o fuera de rango.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP. Problems lista cada problema cuando la validación acumula varios.
type ErrorResponse struct {
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Problems []ProblemDTO `json:"problems,omitempty"`
}

// ProblemDTO un problema de validación (kind + detalle).
type ProblemDTO struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}
