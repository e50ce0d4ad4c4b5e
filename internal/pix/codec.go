// Package pix gera e decodifica payloads EMV "copia e cola" do arranjo PIX
// do Banco Central. O payload é uma sequência TLV textual: id de dois
// dígitos, comprimento de dois dígitos e valor, com campos compostos nos ids
// 26 e 62 e CRC-16 no id 63.
package pix

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/lucasvmx/tabacaria-pos/internal/domain"
)

// Limites de comprimento impostos pelo padrão EMV.
const (
	MaxNome   = 25
	MaxCidade = 15
	MaxInfo   = 72
	MaxTxID   = 25
)

// Cobranca descreve os dados de uma cobrança estática.
type Cobranca struct {
	Chave  string
	Nome   string
	Cidade string
	Valor  decimal.Decimal // zero omite o campo 54 (pagador digita o valor)
	Info   string          // opcional, campo 26-02
	TxID   string          // vazio vira "***"
}

// Payload monta o código copia-e-cola da cobrança.
func Payload(c Cobranca) (string, error) {
	chave := strings.TrimSpace(c.Chave)
	if chave == "" {
		return "", fmt.Errorf("%w: chave pix vazia", domain.ErrEntradaInvalida)
	}
	if c.Valor.IsNegative() {
		return "", fmt.Errorf("%w: valor negativo", domain.ErrEntradaInvalida)
	}

	// O comprimento TLV tem dois dígitos: o valor composto do campo 26 não
	// pode passar de 99 bytes. A chave manda; a descrição encolhe para o
	// espaço que sobrar.
	conta := campo("00", "br.gov.bcb.pix") + campo("01", chave)
	if len(conta) > 99 {
		return "", fmt.Errorf("%w: chave pix longa demais", domain.ErrEntradaInvalida)
	}
	if info := strings.TrimSpace(c.Info); info != "" {
		if sobra := 99 - len(conta) - 4; sobra > 0 {
			if info = truncarBytes(truncar(info, MaxInfo), sobra); info != "" {
				conta += campo("02", info)
			}
		}
	}

	txid := strings.TrimSpace(c.TxID)
	if txid == "" {
		txid = "***"
	}
	txid = truncar(txid, MaxTxID)

	var b strings.Builder
	b.WriteString(campo("00", "01"))   // formato do payload
	b.WriteString(campo("01", "11"))   // estática, reutilizável
	b.WriteString(campo("26", conta))  // Merchant Account Information
	b.WriteString(campo("52", "0000")) // Merchant Category Code
	b.WriteString(campo("53", "986"))  // BRL
	if c.Valor.IsPositive() {
		b.WriteString(campo("54", c.Valor.StringFixed(2)))
	}
	b.WriteString(campo("58", "BR"))
	b.WriteString(campo("59", truncar(nomePadrao(c.Nome, "Seu Nome"), MaxNome)))
	b.WriteString(campo("60", truncar(nomePadrao(c.Cidade, "SUA CIDADE"), MaxCidade)))
	b.WriteString(campo("62", campo("05", txid)))
	b.WriteString("6304")

	payload := b.String()
	return payload + fmt.Sprintf("%04X", crc16(payload)), nil
}

// campo serializa um TLV: id + comprimento em dois dígitos + valor.
func campo(id, valor string) string {
	return fmt.Sprintf("%s%02d%s", id, len(valor), valor)
}

func nomePadrao(s, padrao string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return padrao
	}
	return s
}

func truncar(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// truncarBytes corta em n bytes sem partir uma runa.
func truncarBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// crc16 calcula o CRC-16/CCITT-FALSE (polinômio 0x1021, inicial 0xFFFF, sem
// reflexão) exigido pelo campo 63.
func crc16(s string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(s); i++ {
		crc ^= uint16(s[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// Campo é um TLV decodificado. Valor bruto; campos compostos trazem os
// filhos em Filhos.
type Campo struct {
	ID     string
	Valor  string
	Filhos []Campo
}

// Decodificar abre um payload em campos, validando o CRC final. Usado para
// conferência e em teste de ida e volta.
func Decodificar(payload string) ([]Campo, error) {
	if len(payload) < 8 {
		return nil, fmt.Errorf("%w: payload curto", domain.ErrEntradaInvalida)
	}
	corpo, crcHex := payload[:len(payload)-4], payload[len(payload)-4:]
	if fmt.Sprintf("%04X", crc16(corpo)) != crcHex {
		return nil, fmt.Errorf("%w: crc não confere", domain.ErrEntradaInvalida)
	}
	campos, err := decodificarTLV(payload)
	if err != nil {
		return nil, err
	}
	for i, c := range campos {
		if c.ID == "26" || c.ID == "62" {
			filhos, err := decodificarTLV(c.Valor)
			if err != nil {
				return nil, err
			}
			campos[i].Filhos = filhos
		}
	}
	return campos, nil
}

func decodificarTLV(s string) ([]Campo, error) {
	var campos []Campo
	for i := 0; i < len(s); {
		if i+4 > len(s) {
			return nil, fmt.Errorf("%w: tlv truncado", domain.ErrEntradaInvalida)
		}
		id := s[i : i+2]
		tam := 0
		if _, err := fmt.Sscanf(s[i+2:i+4], "%02d", &tam); err != nil {
			return nil, fmt.Errorf("%w: comprimento inválido em %s", domain.ErrEntradaInvalida, id)
		}
		if i+4+tam > len(s) {
			return nil, fmt.Errorf("%w: valor truncado em %s", domain.ErrEntradaInvalida, id)
		}
		campos = append(campos, Campo{ID: id, Valor: s[i+4 : i+4+tam]})
		i += 4 + tam
	}
	return campos, nil
}
