package sellus

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/packlane/wmsgo/internal/models"
	"gorm.io/datatypes"
)

// entryBuilder accumulates one ledger entry across the steps of a workflow
// invocation. Each workflow creates exactly one builder and records it
// exactly once, on every path out.
type entryBuilder struct {
	entry models.SyncLedgerEntry
}

func newEntry(syncType, direction string) *entryBuilder {
	return &entryBuilder{
		entry: models.SyncLedgerEntry{
			CorrelationID: uuid.NewString(),
			SyncType:      syncType,
			Direction:     direction,
		},
	}
}

func (b *entryBuilder) forProduct(id uint, articleRef string) *entryBuilder {
	b.entry.RelatedProductID = &id
	b.entry.RelatedArticleRef = articleRef
	return b
}

func (b *entryBuilder) forArticle(articleRef string) *entryBuilder {
	b.entry.RelatedArticleRef = articleRef
	return b
}

func (b *entryBuilder) request(payload interface{}) *entryBuilder {
	b.entry.RequestPayload = toJSON(payload)
	return b
}

func (b *entryBuilder) response(raw json.RawMessage) *entryBuilder {
	if len(raw) > 0 {
		b.entry.ResponsePayload = datatypes.JSON(raw)
	}
	return b
}

func (b *entryBuilder) addDuration(ms int64) *entryBuilder {
	b.entry.DurationMs += ms
	return b
}

func (b *entryBuilder) succeeded() *entryBuilder {
	b.entry.Status = models.SyncStatusOK
	return b
}

func (b *entryBuilder) partial(message string) *entryBuilder {
	b.entry.Status = models.SyncStatusPartial
	b.entry.ErrorMessage = message
	return b
}

func (b *entryBuilder) failed(message string) *entryBuilder {
	b.entry.Status = models.SyncStatusFailed
	b.entry.ErrorMessage = message
	return b
}

// toJSON marshals best-effort; audit payloads never block a workflow
func toJSON(payload interface{}) datatypes.JSON {
	if payload == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}
