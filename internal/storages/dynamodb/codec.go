package dynamodb

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
	"gw-fund-subscriptions/internal/storages"
)

// Имена атрибутов в таблицах
const (
	attrCedula          = "cedula"
	attrCorreo          = "correo"
	attrTelefono        = "telefono"
	attrSaldo           = "saldo"
	attrNombre          = "nombre"
	attrCategoria       = "categoria"
	attrMontoMinimo     = "monto_minimo"
	attrDescripcion     = "descripcion"
	attrID              = "id"
	attrUser            = "user"
	attrFondo           = "fondo"
	attrTipoTransaccion = "tipo_transaccion"
	attrMonto           = "monto"
	attrCreatedAt       = "created_at"
	attrUpdatedAt       = "updated_at"

	// headPrefix префикс атрибута пользователя с ID последней записи журнала по фонду
	headPrefix = "head#"
)

type item = map[string]types.AttributeValue

func stringValue(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func numberValue(d decimal.Decimal) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: d.String()}
}

func timeValue(t time.Time) types.AttributeValue {
	return stringValue(t.UTC().Format(time.RFC3339Nano))
}

func headAttribute(fondo string) string {
	return headPrefix + fondo
}

// getString читает строковый атрибут; отсутствующий атрибут дает пустую строку
func getString(it item, key string) (string, error) {
	av, ok := it[key]
	if !ok {
		return "", nil
	}

	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value, nil
	case *types.AttributeValueMemberN:
		return v.Value, nil
	case *types.AttributeValueMemberNULL:
		return "", nil
	default:
		return "", fmt.Errorf("attribute %q: unexpected type %T", key, av)
	}
}

// getNumber читает числовой атрибут. Строковое значение допускается,
// если оно содержит число: так хранились суммы в ранних записях.
func getNumber(it item, key string) (decimal.Decimal, error) {
	av, ok := it[key]
	if !ok {
		return decimal.Zero, nil
	}

	var raw string
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		raw = v.Value
	case *types.AttributeValueMemberS:
		raw = v.Value
	case *types.AttributeValueMemberNULL:
		return decimal.Zero, nil
	default:
		return decimal.Zero, fmt.Errorf("attribute %q: unexpected type %T", key, av)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("attribute %q: invalid number %q: %w", key, raw, err)
	}
	return d, nil
}

func getTime(it item, key string) (time.Time, error) {
	raw, err := getString(it, key)
	if err != nil || raw == "" {
		return time.Time{}, err
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("attribute %q: invalid timestamp %q: %w", key, raw, err)
	}
	return t, nil
}

func userKey(key storages.UserKey) item {
	return item{
		attrCedula: stringValue(key.Cedula),
		attrCorreo: stringValue(key.Correo),
	}
}

func fundKey(nombre, categoria string) item {
	return item{
		attrNombre:    stringValue(nombre),
		attrCategoria: stringValue(categoria),
	}
}

func encodeUser(u *storages.User) item {
	return item{
		attrCedula:    stringValue(u.Cedula),
		attrCorreo:    stringValue(u.Correo),
		attrTelefono:  stringValue(u.Telefono),
		attrSaldo:     numberValue(u.Saldo),
		attrCreatedAt: timeValue(u.CreatedAt),
		attrUpdatedAt: timeValue(u.UpdatedAt),
	}
}

func decodeUser(it item) (*storages.User, error) {
	var (
		u   storages.User
		err error
	)

	if u.Cedula, err = getString(it, attrCedula); err != nil {
		return nil, err
	}
	if u.Correo, err = getString(it, attrCorreo); err != nil {
		return nil, err
	}
	if u.Telefono, err = getString(it, attrTelefono); err != nil {
		return nil, err
	}
	if u.Saldo, err = getNumber(it, attrSaldo); err != nil {
		return nil, err
	}
	if u.CreatedAt, err = getTime(it, attrCreatedAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = getTime(it, attrUpdatedAt); err != nil {
		return nil, err
	}

	return &u, nil
}

func encodeFund(f *storages.Fund) item {
	it := item{
		attrNombre:      stringValue(f.Nombre),
		attrCategoria:   stringValue(f.Categoria),
		attrMontoMinimo: numberValue(f.MontoMinimo),
	}
	if f.Descripcion != "" {
		it[attrDescripcion] = stringValue(f.Descripcion)
	}

	for k, v := range f.Extra {
		switch val := v.(type) {
		case decimal.Decimal:
			it[k] = numberValue(val)
		case string:
			it[k] = stringValue(val)
		}
	}
	return it
}

func decodeFund(it item) (*storages.Fund, error) {
	var (
		f   storages.Fund
		err error
	)

	if f.Nombre, err = getString(it, attrNombre); err != nil {
		return nil, err
	}
	if f.Categoria, err = getString(it, attrCategoria); err != nil {
		return nil, err
	}
	if f.MontoMinimo, err = getNumber(it, attrMontoMinimo); err != nil {
		return nil, err
	}
	if f.Descripcion, err = getString(it, attrDescripcion); err != nil {
		return nil, err
	}

	for k, av := range it {
		switch k {
		case attrNombre, attrCategoria, attrMontoMinimo, attrDescripcion:
			continue
		}

		switch v := av.(type) {
		case *types.AttributeValueMemberS:
			f.SetExtra(k, v.Value)
		case *types.AttributeValueMemberN:
			d, err := decimal.NewFromString(v.Value)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: invalid number %q: %w", k, v.Value, err)
			}
			f.SetExtra(k, d)
		}
	}

	return &f, nil
}

func encodeTransaction(t *storages.Transaction) item {
	return item{
		attrID:              stringValue(t.ID),
		attrUser:            stringValue(t.User),
		attrFondo:           stringValue(t.Fondo),
		attrTipoTransaccion: stringValue(t.TipoTransaccion),
		attrMonto:           numberValue(t.Monto),
		attrCreatedAt:       timeValue(t.CreatedAt),
	}
}

func decodeTransaction(it item) (*storages.Transaction, error) {
	var (
		t   storages.Transaction
		err error
	)

	if t.ID, err = getString(it, attrID); err != nil {
		return nil, err
	}
	if t.User, err = getString(it, attrUser); err != nil {
		return nil, err
	}
	if t.Fondo, err = getString(it, attrFondo); err != nil {
		return nil, err
	}
	if t.TipoTransaccion, err = getString(it, attrTipoTransaccion); err != nil {
		return nil, err
	}
	if t.Monto, err = getNumber(it, attrMonto); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = getTime(it, attrCreatedAt); err != nil {
		return nil, err
	}

	return &t, nil
}
