package upstream

import (
	"fmt"
)

// ErrorKind classifica falhas de transporte com o fornecedor
type ErrorKind string

const (
	KindTimeout        ErrorKind = "timeout"
	KindNetwork        ErrorKind = "network"
	KindUpstreamStatus ErrorKind = "upstream_status"
)

// bodyPrefixLimit limita o trecho do corpo guardado para diagnóstico
const bodyPrefixLimit = 500

// TransportError representa falha de rede, timeout ou status não-2xx do fornecedor.
// Status é zero quando nenhuma resposta HTTP foi recebida.
type TransportError struct {
	Kind       ErrorKind
	Status     int
	BodyPrefix string
	Err        error
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case KindUpstreamStatus:
		return fmt.Sprintf("odds upstream status %d: %s", e.Status, e.BodyPrefix)
	default:
		return fmt.Sprintf("odds upstream %s: %v", e.Kind, e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError indica que o corpo da resposta não era JSON válido
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("odds upstream parse: %v", e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }
