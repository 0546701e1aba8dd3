package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/dmehra2102/pos-backend/pkg/apperr"
)

type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to an InventoryService at addr. Extra options are appended
// after the defaults, so tests can swap in a bufconn dialer.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}
	conn, err := grpc.NewClient(addr, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) CheckStock(ctx context.Context, items []StockLine) (*CheckStockResponse, error) {
	out := new(CheckStockResponse)
	if err := c.conn.Invoke(ctx, checkStockMethod, &CheckStockRequest{Items: items}, out); err != nil {
		return nil, fromStatus(err)
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, productID int64) (*ProductReply, error) {
	out := new(ProductReply)
	if err := c.conn.Invoke(ctx, getProductMethod, &GetProductRequest{ProductID: productID}, out); err != nil {
		return nil, fromStatus(err)
	}
	return out, nil
}

func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		return apperr.Wrap(apperr.KindNotFound, err, "inventory")
	case codes.InvalidArgument:
		return apperr.Wrap(apperr.KindInvalidArgument, err, "inventory")
	}
	return err
}
