package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/database"
)

const messageColumns = `id, event_id, aggregate_type, aggregate_id, event_type, routing_key,
	payload, metadata, created_at, published_at, retry_count, next_retry_at,
	last_error, dead_lettered_at, dead_letter_reason`

// Store is the SQL Repository shared by the SQLite and Postgres drivers.
type Store struct {
	conn database.Connection
	now  func() time.Time
}

// NewStore creates a store over conn.
func NewStore(conn database.Connection) *Store {
	return &Store{conn: conn, now: time.Now}
}

func (s *Store) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, s.conn)
}

func (s *Store) Save(ctx context.Context, msg *Message) error {
	var metadata sql.NullString
	if len(msg.Metadata) > 0 {
		metadata = sql.NullString{String: string(msg.Metadata), Valid: true}
	}

	err := s.exec(ctx).QueryRow(ctx, `
		INSERT INTO outbox (event_id, aggregate_type, aggregate_id, event_type, routing_key, payload, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		msg.EventID.String(), msg.AggregateType, msg.AggregateID.String(), msg.EventType,
		msg.RoutingKey, string(msg.Payload), metadata, database.FormatTime(msg.CreatedAt),
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("save outbox message %s: %w", msg.EventID, err)
	}
	return nil
}

// SaveBatch stores msgs atomically. Inside an existing transaction it simply
// joins it; otherwise it opens its own.
func (s *Store) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if database.Tx(ctx) != nil {
		return s.saveAll(ctx, msgs)
	}

	tx, err := s.conn.BeginTx(ctx)
	if err != nil {
		return err
	}
	txCtx := database.BindTx(ctx, tx)
	if err := s.saveAll(txCtx, msgs); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) saveAll(ctx context.Context, msgs []*Message) error {
	for _, msg := range msgs {
		if err := s.Save(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.exec(ctx).Query(ctx, `
		SELECT `+messageColumns+`
		FROM outbox
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY id
		LIMIT ?`,
		database.FormatTime(s.now()), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (s *Store) MarkPublished(ctx context.Context, id int64) error {
	_, err := s.exec(ctx).Exec(ctx,
		`UPDATE outbox SET published_at = ? WHERE id = ?`,
		database.FormatTime(s.now()), id)
	return err
}

func (s *Store) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	_, err := s.exec(ctx).Exec(ctx,
		`UPDATE outbox SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ? WHERE id = ?`,
		errMsg, database.FormatTime(nextRetryAt), id)
	return err
}

func (s *Store) MarkDead(ctx context.Context, id int64, reason string) error {
	_, err := s.exec(ctx).Exec(ctx, `
		UPDATE outbox
		SET retry_count = retry_count + 1, last_error = ?, dead_lettered_at = ?, dead_letter_reason = ?
		WHERE id = ?`,
		reason, database.FormatTime(s.now()), reason, id)
	return err
}

func (s *Store) DeleteOld(ctx context.Context, publishedBefore time.Time) (int64, error) {
	result, err := s.exec(ctx).Exec(ctx,
		`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < ?`,
		database.FormatTime(publishedBefore))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanMessage(row database.Row) (*Message, error) {
	var msg Message
	var eventID, aggregateID, payload, createdAt string
	var metadata, publishedAt, nextRetryAt, lastError, deadAt, deadReason sql.NullString
	var retryCount int64
	err := row.Scan(&msg.ID, &eventID, &msg.AggregateType, &aggregateID, &msg.EventType,
		&msg.RoutingKey, &payload, &metadata, &createdAt, &publishedAt, &retryCount,
		&nextRetryAt, &lastError, &deadAt, &deadReason)
	if err != nil {
		return nil, err
	}

	if msg.EventID, err = uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("outbox message %d: %w", msg.ID, err)
	}
	if msg.AggregateID, err = uuid.Parse(aggregateID); err != nil {
		return nil, fmt.Errorf("outbox message %d: %w", msg.ID, err)
	}
	if msg.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("outbox message %d: %w", msg.ID, err)
	}
	msg.Payload = json.RawMessage(payload)
	if metadata.Valid {
		msg.Metadata = json.RawMessage(metadata.String)
	}
	msg.RetryCount = int(retryCount)
	if msg.PublishedAt, err = database.ParseNullTime(publishedAt); err != nil {
		return nil, err
	}
	if msg.NextRetryAt, err = database.ParseNullTime(nextRetryAt); err != nil {
		return nil, err
	}
	if msg.DeadLetteredAt, err = database.ParseNullTime(deadAt); err != nil {
		return nil, err
	}
	if lastError.Valid {
		msg.LastError = &lastError.String
	}
	if deadReason.Valid {
		msg.DeadLetterReason = &deadReason.String
	}
	return &msg, nil
}
