package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"chatwire/internal/common/db"
	"chatwire/internal/common/logger"
	"chatwire/internal/message/domain"
)

type Repository interface {
	Create(ctx context.Context, msg domain.Message) error
	ListConversation(ctx context.Context, userA, userB string) ([]domain.Message, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewPgRepository(pool *pgxpool.Pool, log *logger.Logger) *PgRepository {
	return &PgRepository{pool: pool, log: log}
}

// Create retries transient failures: a dropped connection or deadlock must
// not lose a message the sender already considers sent.
func (r *PgRepository) Create(ctx context.Context, msg domain.Message) error {
	return db.RetryWithBackoff(ctx, r.log, db.DefaultRetryConfig, func() error {
		start := time.Now()
		_, err := r.pool.Exec(
			ctx,
			`INSERT INTO messages (id, sender_id, receiver_id, text, created_at) VALUES ($1, $2, $3, $4, $5)`,
			msg.ID,
			msg.SenderID,
			msg.ReceiverID,
			msg.Text,
			msg.CreatedAt,
		)
		return db.HandleExecError(err, "create message", start)
	})
}

// ListConversation returns both directions of traffic between the two users,
// oldest first.
func (r *PgRepository) ListConversation(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, sender_id, receiver_id, text, created_at
		 FROM messages
		 WHERE (sender_id = $1 AND receiver_id = $2)
		    OR (sender_id = $2 AND receiver_id = $1)
		 ORDER BY created_at ASC`,
		userA,
		userB,
	)
	if err != nil {
		return nil, db.HandleExecError(err, "list conversation", start)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.CreatedAt); err != nil {
			return nil, db.HandleExecError(err, "scan message", start)
		}
		messages = append(messages, m)
	}

	if rows.Err() != nil {
		return nil, db.HandleExecError(rows.Err(), "list conversation", start)
	}

	return messages, nil
}
