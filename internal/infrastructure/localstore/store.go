package localstore

// Chaves persistidas no store local. O layout espelha o formato histórico:
// arrays JSON por coleção e um escalar por dia para a receita.
const (
	ChaveProdutos            = "produtos"
	ChaveMovimentos          = "historico_movimentos"
	ChaveVendas              = "historico_vendas"
	ChaveVendedores          = "vendedores"
	ChaveVendedorSelecionado = "vendedor_selecionado"
	ChavePixConfig           = "pix_config"

	// PrefixoVendasDia + data ISO (2006-01-02) guarda a receita do dia.
	PrefixoVendasDia = "vendas_"
)

// Store é o armazenamento durável local, síncrono, indexado por chave string.
// É o sistema de registro quando não há espelho remoto configurado.
type Store interface {
	Get(chave string) (valor string, ok bool, err error)
	Set(chave, valor string) error
	Delete(chave string) error
	Keys(prefixo string) ([]string, error)
}

// Observado decora um Store e notifica observadores após cada escrita bem
// sucedida. É o análogo do evento nativo de mudança do armazenamento do
// navegador: um canal redundante de consistência entre abas.
type Observado struct {
	Store
	observadores []func(chave string)
}

// Observar registra o Store dentro de um Observado.
func Observar(s Store) *Observado {
	return &Observado{Store: s}
}

// AoMudar registra um observador chamado com a chave alterada.
func (o *Observado) AoMudar(fn func(chave string)) {
	o.observadores = append(o.observadores, fn)
}

// Set escreve e notifica os observadores.
func (o *Observado) Set(chave, valor string) error {
	if err := o.Store.Set(chave, valor); err != nil {
		return err
	}
	for _, fn := range o.observadores {
		fn(chave)
	}
	return nil
}

// Delete remove e notifica os observadores.
func (o *Observado) Delete(chave string) error {
	if err := o.Store.Delete(chave); err != nil {
		return err
	}
	for _, fn := range o.observadores {
		fn(chave)
	}
	return nil
}
