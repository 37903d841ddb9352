package grpc

import (
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// NewServer создает gRPC сервер с каталогом фондов и стандартным health сервисом
func NewServer(catalog CatalogService, logger *logrus.Logger) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.UnaryInterceptor(LoggingInterceptor(logger)),
	)

	RegisterCatalogServer(srv, catalog)

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(srv, healthSrv)

	return srv, healthSrv
}
