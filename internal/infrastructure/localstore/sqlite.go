package localstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implementa Store sobre uma única tabela chave/valor em SQLite.
// Driver sem CGO (modernc.org/sqlite); uma conexão só, já que todo acesso é
// serializado pelo chamador.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLite abre (ou cria) o banco no caminho dado. Aceita ":memory:".
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	const schema = `
		CREATE TABLE IF NOT EXISTS kv (
			chave         TEXT PRIMARY KEY,
			valor         TEXT NOT NULL,
			atualizado_em TIMESTAMP NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("criar esquema kv: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Get devolve o valor da chave, com ok=false quando ausente.
func (s *SQLiteStore) Get(chave string) (string, bool, error) {
	var valor string
	err := s.db.Get(&valor, `SELECT valor FROM kv WHERE chave = ?`, chave)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %q: %w", chave, err)
	}
	return valor, true, nil
}

// Set grava (ou substitui) o valor da chave.
func (s *SQLiteStore) Set(chave, valor string) error {
	_, err := s.db.Exec(`
		INSERT INTO kv (chave, valor, atualizado_em) VALUES (?, ?, ?)
		ON CONFLICT (chave) DO UPDATE SET valor = excluded.valor, atualizado_em = excluded.atualizado_em`,
		chave, valor, time.Now())
	if err != nil {
		return fmt.Errorf("set %q: %w", chave, err)
	}
	return nil
}

// Delete remove a chave (sem erro se não existe).
func (s *SQLiteStore) Delete(chave string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE chave = ?`, chave); err != nil {
		return fmt.Errorf("delete %q: %w", chave, err)
	}
	return nil
}

// Keys lista as chaves com o prefixo dado.
func (s *SQLiteStore) Keys(prefixo string) ([]string, error) {
	var chaves []string
	err := s.db.Select(&chaves, `SELECT chave FROM kv WHERE chave LIKE ? ORDER BY chave`, prefixo+"%")
	if err != nil {
		return nil, fmt.Errorf("keys %q: %w", prefixo, err)
	}
	return chaves, nil
}

// Close fecha a conexão.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
