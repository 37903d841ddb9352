package grpc

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"gw-fund-subscriptions/internal/storages"
)

const serviceName = "fundcatalog.FundCatalog"

// Поля сообщения фонда
const (
	fieldNombre      = "nombre"
	fieldCategoria   = "categoria"
	fieldMontoMinimo = "monto_minimo"
	fieldDescripcion = "descripcion"
)

// CatalogService серверная часть каталога фондов.
// Фонд передается как structpb.Struct, каталог как structpb.ListValue.
type CatalogService interface {
	ListFunds(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
	GetFund(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// fundToStruct переводит фонд в сообщение; monto_minimo передается строкой без потери точности
func fundToStruct(f *storages.Fund) *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldNombre:      structpb.NewStringValue(f.Nombre),
		fieldCategoria:   structpb.NewStringValue(f.Categoria),
		fieldMontoMinimo: structpb.NewStringValue(f.MontoMinimo.String()),
	}
	if f.Descripcion != "" {
		fields[fieldDescripcion] = structpb.NewStringValue(f.Descripcion)
	}
	return &structpb.Struct{Fields: fields}
}

func structToFund(s *structpb.Struct) (storages.Fund, error) {
	fund := storages.Fund{
		Nombre:      stringField(s, fieldNombre),
		Categoria:   stringField(s, fieldCategoria),
		Descripcion: stringField(s, fieldDescripcion),
	}
	if fund.Nombre == "" {
		return storages.Fund{}, fmt.Errorf("fund message without %s", fieldNombre)
	}

	monto, err := decimal.NewFromString(stringField(s, fieldMontoMinimo))
	if err != nil {
		return storages.Fund{}, fmt.Errorf("fund %s: invalid %s: %w", fund.Nombre, fieldMontoMinimo, err)
	}
	fund.MontoMinimo = monto

	return fund, nil
}

func fundsToList(funds []storages.Fund) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(funds))
	for i := range funds {
		values = append(values, structpb.NewStructValue(fundToStruct(&funds[i])))
	}
	return &structpb.ListValue{Values: values}
}

func listToFunds(l *structpb.ListValue) ([]storages.Fund, error) {
	funds := make([]storages.Fund, 0, len(l.GetValues()))
	for i, v := range l.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			return nil, fmt.Errorf("catalog entry %d is not a fund", i)
		}
		fund, err := structToFund(s)
		if err != nil {
			return nil, err
		}
		funds = append(funds, fund)
	}
	return funds, nil
}

// fundQuery запрос фонда; пустая категория ищет только по имени
func fundQuery(nombre, categoria string) *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldNombre: structpb.NewStringValue(nombre),
	}
	if categoria != "" {
		fields[fieldCategoria] = structpb.NewStringValue(categoria)
	}
	return &structpb.Struct{Fields: fields}
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

// RegisterCatalogServer регистрирует реализацию каталога на gRPC сервере
func RegisterCatalogServer(s *grpc.Server, srv CatalogService) {
	s.RegisterService(&catalogServiceDesc, srv)
}

var catalogServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CatalogService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListFunds", Handler: listFundsHandler},
		{MethodName: "GetFund", Handler: getFundHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fundcatalog",
}

func listFundsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogService).ListFunds(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/ListFunds"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CatalogService).ListFunds(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getFundHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogService).GetFund(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetFund"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CatalogService).GetFund(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
