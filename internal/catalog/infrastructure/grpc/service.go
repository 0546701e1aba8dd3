package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/dmehra2102/pos-backend/internal/catalog/domain"
)

const (
	serviceName      = "pos.inventory.v1.InventoryService"
	checkStockMethod = "/" + serviceName + "/CheckStock"
	getProductMethod = "/" + serviceName + "/GetProduct"
)

type StockLine struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type CheckStockRequest struct {
	Items []StockLine `json:"items"`
}

type CheckStockResponse struct {
	Available bool              `json:"available"`
	Shortages []domain.Shortage `json:"shortages,omitempty"`
}

type GetProductRequest struct {
	ProductID int64 `json:"productId"`
}

type ProductReply struct {
	ProductID     int64  `json:"productId"`
	Name          string `json:"name"`
	Price         string `json:"price"`
	StockQuantity int    `json:"stockQuantity"`
	MinStockLevel int    `json:"minStockLevel"`
	NeedsRestock  bool   `json:"needsRestock"`
}

type InventoryServer interface {
	CheckStock(ctx context.Context, req *CheckStockRequest) (*CheckStockResponse, error)
	GetProduct(ctx context.Context, req *GetProductRequest) (*ProductReply, error)
}

func RegisterInventoryServer(s grpc.ServiceRegistrar, srv InventoryServer) {
	s.RegisterService(&inventoryServiceDesc, srv)
}

var inventoryServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*InventoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CheckStock", Handler: checkStockHandler},
		{MethodName: "GetProduct", Handler: getProductHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pos/inventory/v1/inventory",
}

func checkStockHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CheckStockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServer).CheckStock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: checkStockMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServer).CheckStock(ctx, req.(*CheckStockRequest))
	})
}

func getProductHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetProductRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServer).GetProduct(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getProductMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServer).GetProduct(ctx, req.(*GetProductRequest))
	})
}
