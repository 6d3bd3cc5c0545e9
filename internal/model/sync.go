package model

import (
	"time"

	"github.com/google/uuid"
)

// Jobs agendados; também usados como label de métricas.
const (
	JobBrands   = "brands"
	JobProducts = "products"
	JobSpecs    = "specs"
)

// SyncFailure registra uma unidade de sincronização que falhou durante uma
// execução agendada. Não existe fila de retry: a unidade fica desatualizada
// até a próxima execução.
type SyncFailure struct {
	ID         uuid.UUID `json:"id"`
	RunID      uuid.UUID `json:"runId"`
	Job        string    `json:"job"`
	Target     string    `json:"target"`
	Error      string    `json:"error"`
	OccurredAt time.Time `json:"occurredAt"`
}
