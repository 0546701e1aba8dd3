package grpc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmehra2102/pos-backend/internal/catalog/application"
	"github.com/dmehra2102/pos-backend/pkg/apperr"
)

type Server struct {
	log *slog.Logger
	svc *application.Service
}

func NewServer(log *slog.Logger, svc *application.Service) *Server {
	return &Server{log: log, svc: svc}
}

func (s *Server) CheckStock(ctx context.Context, req *CheckStockRequest) (*CheckStockResponse, error) {
	if len(req.Items) == 0 {
		return nil, status.Error(codes.InvalidArgument, "at least one item is required")
	}
	demand := make(map[int64]int, len(req.Items))
	for _, it := range req.Items {
		demand[it.ProductID] += it.Quantity
	}
	shortages, err := s.svc.CheckStock(ctx, demand)
	if err != nil {
		return nil, toStatus(err)
	}
	return &CheckStockResponse{Available: len(shortages) == 0, Shortages: shortages}, nil
}

func (s *Server) GetProduct(ctx context.Context, req *GetProductRequest) (*ProductReply, error) {
	p, err := s.svc.Get(ctx, req.ProductID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ProductReply{
		ProductID:     p.ID,
		Name:          p.Name,
		Price:         p.Price.StringFixed(2),
		StockQuantity: p.StockQuantity,
		MinStockLevel: p.MinStockLevel,
		NeedsRestock:  p.NeedsRestock(),
	}, nil
}

func toStatus(err error) error {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return status.Error(codes.NotFound, err.Error())
	case apperr.KindInvalidArgument:
		return status.Error(codes.InvalidArgument, err.Error())
	case apperr.KindInsufficientStock:
		return status.Error(codes.FailedPrecondition, err.Error())
	case apperr.KindConflict:
		return status.Error(codes.Aborted, err.Error())
	}
	return status.Error(codes.Internal, "internal error")
}

func loggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		lvl := slog.LevelInfo
		if code == codes.Internal || code == codes.Unknown {
			lvl = slog.LevelError
		}
		log.Log(ctx, lvl, "grpc request", "method", info.FullMethod, "code", code.String(), "duration_ms", time.Since(start).Milliseconds())
		return resp, err
	}
}

// NewGRPCServer builds a grpc.Server with the inventory service registered.
func NewGRPCServer(log *slog.Logger, srv InventoryServer) *grpc.Server {
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(log)))
	RegisterInventoryServer(gs, srv)
	return gs
}

// Run listens on addr and serves in the background until the returned
// server is stopped.
func Run(log *slog.Logger, addr string, srv InventoryServer) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	gs := NewGRPCServer(log, srv)
	go func() {
		log.Info("grpc listening", "addr", addr)
		if err := gs.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Error("grpc server error", "err", err)
		}
	}()
	return gs, nil
}
