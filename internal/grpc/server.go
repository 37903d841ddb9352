package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"gw-fund-subscriptions/internal/storages"
)

// CatalogServer реализует gRPC сервис каталога фондов
type CatalogServer struct {
	storage storages.FundReader
	logger  *logrus.Logger
}

// NewCatalogServer создает новый экземпляр CatalogServer
func NewCatalogServer(storage storages.FundReader, logger *logrus.Logger) *CatalogServer {
	return &CatalogServer{
		storage: storage,
		logger:  logger,
	}
}

// ListFunds возвращает весь каталог фондов
func (s *CatalogServer) ListFunds(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	funds, err := s.storage.ListFunds(ctx)
	if err != nil {
		s.logger.Errorf("Failed to list funds: %v", err)
		return nil, status.Error(codes.Internal, "failed to list funds")
	}

	s.logger.Debugf("Returned %d funds", len(funds))
	return fundsToList(funds), nil
}

// GetFund возвращает фонд по имени и, если указана, категории
func (s *CatalogServer) GetFund(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	nombre := stringField(req, fieldNombre)
	categoria := stringField(req, fieldCategoria)
	if nombre == "" {
		return nil, status.Error(codes.InvalidArgument, "nombre is required")
	}

	if categoria != "" {
		fund, err := s.storage.GetFund(ctx, nombre, categoria)
		if errors.Is(err, storages.ErrNotFound) {
			return nil, status.Errorf(codes.NotFound, "fund %s/%s not found", nombre, categoria)
		}
		if err != nil {
			s.logger.Errorf("Failed to get fund %s/%s: %v", nombre, categoria, err)
			return nil, status.Error(codes.Internal, "failed to get fund")
		}
		return fundToStruct(fund), nil
	}

	funds, err := s.storage.ListFunds(ctx)
	if err != nil {
		s.logger.Errorf("Failed to list funds: %v", err)
		return nil, status.Error(codes.Internal, "failed to get fund")
	}

	for i := range funds {
		if funds[i].Nombre == nombre {
			return fundToStruct(&funds[i]), nil
		}
	}
	return nil, status.Errorf(codes.NotFound, "fund %s not found", nombre)
}

// LoggingInterceptor создает interceptor для логирования gRPC запросов
func LoggingInterceptor(log *logrus.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		duration := time.Since(start)
		if err != nil {
			log.Errorf("gRPC method: %s, duration: %v, code: %s, error: %v",
				info.FullMethod, duration, status.Code(err), err)
		} else {
			log.Infof("gRPC method: %s, duration: %v, status: success", info.FullMethod, duration)
		}

		return resp, err
	}
}
