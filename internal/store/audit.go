package store

import (
	"context"
	"encoding/json"

	"github.com/hangarworks/fleetsync/pkg/errors"
)

// AppendAudit records an administrative or job action. Detail is stored as
// JSON; a nil map records an empty object.
func (s *Store) AppendAudit(ctx context.Context, job, action string, detail map[string]any) error {
	if detail == nil {
		detail = map[string]any{}
	}
	payload, err := json.Marshal(detail)
	if err != nil {
		return errors.WrapParse("json", "audit detail", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO audit_log (job, action, detail) VALUES ($1, $2, $3)`,
		job, action, payload)
	return errors.WrapStore("insert", "audit_log", err)
}
