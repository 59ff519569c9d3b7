package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indica que la fila pedida no existe.
var ErrNotFound = errors.New("record not found")

// DBTX es lo comun entre *pgxpool.Pool y pgx.Tx; los repositorios
// funcionan igual dentro o fuera de una transaccion.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store agrupa los repositorios que comparten una unidad de trabajo.
type Store interface {
	Chats() ChatRepository
	Conversations() ConversationRepository
	Files() FileRepository
	// WithTx ejecuta fn sobre un Store ligado a una transaccion. Hace commit
	// si fn devuelve nil y rollback en cualquier otro caso, incluido panic.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// PgStore implementa Store sobre pgx.
type PgStore struct {
	db       DBTX
	beginner txBeginner
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{db: pool, beginner: pool}
}

func (s *PgStore) Chats() ChatRepository {
	return &PgChatRepository{db: s.db}
}

func (s *PgStore) Conversations() ConversationRepository {
	return &PgConversationRepository{db: s.db}
}

func (s *PgStore) Files() FileRepository {
	return &PgFileRepository{db: s.db}
}

func (s *PgStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	// Ya estamos dentro de una transaccion: no se anidan.
	if s.beginner == nil {
		return fn(s)
	}

	tx, err := s.beginner.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// Rollback despues de Commit no tiene efecto.
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(&PgStore{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func translateNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// translateWriteErr convierte una violacion de FK (chat inexistente) en
// ErrNotFound; el resto de errores sale tal cual.
func translateWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return fmt.Errorf("%w: %s", ErrNotFound, pgErr.ConstraintName)
	}
	return err
}

const foreignKeyViolation = "23503"
