package storage

import (
	"database/sql"

	"github.com/lotas/ticketdeck/internal/types"
)

// TicketStore adapts the package functions to a method set so callers can
// depend on an interface instead of *sql.DB.
type TicketStore struct {
	DB *sql.DB
}

func NewTicketStore(db *sql.DB) *TicketStore { return &TicketStore{DB: db} }

func (s *TicketStore) UpsertTickets(tickets []types.Ticket) (int, error) {
	return UpsertTickets(s.DB, tickets)
}

func (s *TicketStore) ListTickets() ([]types.Ticket, error) { return ListTickets(s.DB) }

func (s *TicketStore) ListTicketKeys() ([]string, error) { return ListTicketKeys(s.DB) }

func (s *TicketStore) DeleteTicket(key string) error { return DeleteTicket(s.DB, key) }

func (s *TicketStore) SaveTicketFields(key string, fields map[string]any) error {
	return SaveTicketFields(s.DB, key, fields)
}

func (s *TicketStore) ReplaceFieldMeta(key string, metas []types.FieldMeta) error {
	return ReplaceFieldMeta(s.DB, key, metas)
}

func (s *TicketStore) ListFieldMeta(key string) ([]types.FieldMeta, error) {
	return ListFieldMeta(s.DB, key)
}
