package localstore_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasvmx/tabacaria-pos/internal/infrastructure/localstore"
)

// exercitarStore roda o contrato comum a qualquer Store.
func exercitarStore(t *testing.T, s localstore.Store) {
	t.Helper()

	_, ok, err := s.Get("produtos")
	require.NoError(t, err)
	assert.False(t, ok, "chave inexistente")

	require.NoError(t, s.Set("produtos", `[{"id":"1"}]`))
	valor, ok, err := s.Get("produtos")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, valor)

	// Sobrescrita
	require.NoError(t, s.Set("produtos", `[]`))
	valor, _, _ = s.Get("produtos")
	assert.Equal(t, `[]`, valor)

	require.NoError(t, s.Set("vendas_2026-08-28", "10.00"))
	require.NoError(t, s.Set("vendas_2026-08-27", "55.50"))
	chaves, err := s.Keys("vendas_")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"vendas_2026-08-28", "vendas_2026-08-27"}, chaves)

	require.NoError(t, s.Delete("produtos"))
	_, ok, _ = s.Get("produtos")
	assert.False(t, ok, "chave removida")

	// Delete de chave inexistente não é erro.
	assert.NoError(t, s.Delete("inexistente"))
}

func TestMemoryStore_Contrato(t *testing.T) {
	exercitarStore(t, localstore.NewMemory())
}

func TestSQLiteStore_Contrato(t *testing.T) {
	s, err := localstore.NewSQLite(filepath.Join(t.TempDir(), "teste.db"))
	require.NoError(t, err)
	defer s.Close()
	exercitarStore(t, s)
}

// O valor persistido em SQLite sobrevive a reabrir o arquivo.
func TestSQLiteStore_Durabilidade(t *testing.T) {
	caminho := filepath.Join(t.TempDir(), "teste.db")

	s1, err := localstore.NewSQLite(caminho)
	require.NoError(t, err)
	require.NoError(t, s1.Set("pix_config", `{"chave":"a@b.c"}`))
	require.NoError(t, s1.Close())

	s2, err := localstore.NewSQLite(caminho)
	require.NoError(t, err)
	defer s2.Close()
	valor, ok, err := s2.Get("pix_config")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"chave":"a@b.c"}`, valor)
}

func TestObservado_NotificaAposEscrita(t *testing.T) {
	o := localstore.Observar(localstore.NewMemory())

	var mudadas []string
	o.AoMudar(func(chave string) { mudadas = append(mudadas, chave) })

	require.NoError(t, o.Set("produtos", "[]"))
	require.NoError(t, o.Set("historico_movimentos", "[]"))
	require.NoError(t, o.Delete("produtos"))

	assert.Equal(t, []string{"produtos", "historico_movimentos", "produtos"}, mudadas)
}
