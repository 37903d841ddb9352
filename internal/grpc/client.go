package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"gw-fund-subscriptions/internal/cache"
	"gw-fund-subscriptions/internal/storages"
)

// CatalogClient обертка над gRPC клиентом каталога фондов
type CatalogClient struct {
	conn    *grpc.ClientConn
	health  grpc_health_v1.HealthClient
	cache   *cache.FundCache
	timeout time.Duration
	logger  *logrus.Logger
}

// NewCatalogClient создает новый gRPC клиент; соединение устанавливается лениво
func NewCatalogClient(host, port string, timeout time.Duration, fundCache *cache.FundCache, logger *logrus.Logger, opts ...grpc.DialOption) (*CatalogClient, error) {
	address := net.JoinHostPort(host, port)

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	conn, err := grpc.Dial(address, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog client: %w", err)
	}

	logger.Infof("Catalog client created for %s", address)

	return &CatalogClient{
		conn:    conn,
		health:  grpc_health_v1.NewHealthClient(conn),
		cache:   fundCache,
		timeout: timeout,
		logger:  logger,
	}, nil
}

func (c *CatalogClient) invoke(ctx context.Context, method string, req, resp interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return c.conn.Invoke(ctx, "/"+serviceName+"/"+method, req, resp)
}

// ListFunds получает каталог, используя кеш
func (c *CatalogClient) ListFunds(ctx context.Context) ([]storages.Fund, error) {
	if c.cache != nil {
		if funds, ok := c.cache.Get(); ok {
			c.logger.Debug("Using cached fund catalog")
			return funds, nil
		}
	}

	resp := new(structpb.ListValue)
	if err := c.invoke(ctx, "ListFunds", &emptypb.Empty{}, resp); err != nil {
		c.logger.Errorf("Failed to list funds: %v", err)
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}

	funds, err := listToFunds(resp)
	if err != nil {
		c.logger.Errorf("Malformed catalog response: %v", err)
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}

	if c.cache != nil {
		c.cache.Set(funds)
	}

	c.logger.Debugf("Received %d funds from catalog", len(funds))
	return funds, nil
}

// GetFund получает фонд из кеша или из каталога
func (c *CatalogClient) GetFund(ctx context.Context, nombre, categoria string) (*storages.Fund, error) {
	if c.cache != nil {
		if fund, ok := c.cache.GetFund(nombre, categoria); ok {
			return fund, nil
		}
	}

	resp := new(structpb.Struct)
	err := c.invoke(ctx, "GetFund", fundQuery(nombre, categoria), resp)
	if status.Code(err) == codes.NotFound {
		return nil, storages.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fund: %w", err)
	}

	fund, err := structToFund(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to get fund: %w", err)
	}
	return &fund, nil
}

// Ping проверяет доступность сервиса через стандартный health check
func (c *CatalogClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.health.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: serviceName})
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		return fmt.Errorf("catalog is %s", resp.GetStatus())
	}
	return nil
}

// Close закрывает соединение с gRPC сервером
func (c *CatalogClient) Close() error {
	if c.conn != nil {
		c.logger.Info("Closing connection to catalog service")
		return c.conn.Close()
	}
	return nil
}
