package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgChangeListener holds the dedicated connection that LISTENs on the items
// channel. It is not pooled: notifications are delivered to the session
// that issued LISTEN.
type PgChangeListener struct {
	conn         *pgx.Conn
	channel      string
	pollInterval time.Duration
}

func NewPgChangeListener(
	ctx context.Context,
	dsn string,
	channel string,
	pollInterval time.Duration,
) (*PgChangeListener, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect listener: %w", err)
	}
	if _, err := conn.Exec(ctx, "listen "+pgx.Identifier{channel}.Sanitize()); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("listen %s: %w", channel, err)
	}
	return &PgChangeListener{
		conn:         conn,
		channel:      channel,
		pollInterval: pollInterval,
	}, nil
}

// WaitForChange blocks until a notification arrives or the poll interval
// elapses. Notifications already buffered on the connection are returned
// immediately, so repeated calls drain them in arrival order.
func (l *PgChangeListener) WaitForChange(ctx context.Context) (string, bool, error) {
	waitCtx, cancel := context.WithTimeout(ctx, l.pollInterval)
	defer cancel()

	n, err := l.conn.WaitForNotification(waitCtx)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		if pgconn.Timeout(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("wait for notification: %w", err)
	}
	if n.Channel != l.channel {
		return "", false, nil
	}
	return n.Payload, true, nil
}

func (l *PgChangeListener) Close(ctx context.Context) error {
	return l.conn.Close(ctx)
}
