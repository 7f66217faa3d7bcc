package normalizer

// Record é um objeto JSON cru vindo do fornecedor
type Record = map[string]any

// Shape identifica o formato reconhecido do topo do payload
type Shape int

const (
	ShapeUnknown    Shape = iota
	ShapeArray            // [ {...}, {...} ]
	ShapeWrapped          // { "data": [ ... ] } e variações
	ShapeSingleGame       // { "id": ..., "bookmakers": [ ... ] }
)

func (s Shape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapeWrapped:
		return "wrapped"
	case ShapeSingleGame:
		return "single_game"
	default:
		return "unknown"
	}
}

// Tabelas de chaves, em ordem de prioridade
var (
	WrapperKeys       = []string{"data", "events", "games", "matches", "response"}
	IDKeys            = []string{"id", "game_id", "gameId", "event_id", "eventId"}
	BookmakerListKeys = []string{"bookmakers", "sites"}
)

// Classify decide o formato do payload e, para ShapeWrapped, a chave usada
func Classify(payload any) (Shape, string) {
	switch v := payload.(type) {
	case []any:
		return ShapeArray, ""
	case Record:
		for _, k := range WrapperKeys {
			if _, ok := v[k].([]any); ok {
				return ShapeWrapped, k
			}
		}
		if looksLikeGame(v) {
			return ShapeSingleGame, ""
		}
	}
	return ShapeUnknown, ""
}

// Normalize transforma qualquer payload em uma sequência ordenada de registros de jogo.
// Formatos não reconhecidos resultam em sequência vazia, nunca em erro.
func Normalize(payload any) []Record {
	shape, key := Classify(payload)
	switch shape {
	case ShapeArray:
		return records(payload.([]any))
	case ShapeWrapped:
		return records(payload.(Record)[key].([]any))
	case ShapeSingleGame:
		return []Record{payload.(Record)}
	default:
		return []Record{}
	}
}

// records mantém só os elementos que são objetos, preservando a ordem
func records(items []any) []Record {
	out := make([]Record, 0, len(items))
	for _, it := range items {
		if r, ok := it.(Record); ok {
			out = append(out, r)
		}
	}
	return out
}

func looksLikeGame(r Record) bool {
	if !HasAny(r, IDKeys) {
		return false
	}
	for _, k := range BookmakerListKeys {
		if _, ok := r[k].([]any); ok {
			return true
		}
	}
	return false
}

// HasAny informa se alguma das chaves existe com valor não nulo
func HasAny(r Record, keys []string) bool {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return true
		}
	}
	return false
}
