package cluster

import (
	"context"
	"math/rand"
	"net"
	"net/rpc"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/awesomefly/easyextract/util"
)

// RpcCall RPC方法必须满足Go语言的RPC规则：方法只能有两个可序列化的参数，其中第二个参数是指针类型，并且返回一个error类型，同时必须是公开的方法
func RpcCall(ctx context.Context, host string, method string, request interface{}, response interface{}) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return errors.Wrapf(err, "dial %s", host)
	}
	client := rpc.NewClient(conn)
	defer client.Close()

	call := client.Go(method, request, response, make(chan *rpc.Call, 1))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-call.Done:
		return errors.Wrapf(call.Error, "call %s on %s", method, host)
	}
}

// Client extracts from every shard of the cluster through the data nodes.
type Client struct {
	manager string
	logger  *zap.Logger

	lock    sync.Mutex
	cluster *Cluster
	rng     *rand.Rand
}

// NewClient fetches the cluster layout from the manager at address.
func NewClient(ctx context.Context, address string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		manager: address,
		logger:  logger,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Refresh reloads the cluster layout, which changes whenever a data node joins.
func (c *Client) Refresh(ctx context.Context) error {
	from, err := util.GetLocalIP()
	if err != nil {
		from = "client"
	}
	cluster := &Cluster{}
	if err := RpcCall(ctx, c.manager, "ManagerServer.GetCluster", from, cluster); err != nil {
		return errors.Wrap(err, "get cluster")
	}
	c.lock.Lock()
	c.cluster = cluster
	c.lock.Unlock()
	return nil
}

func (c *Client) route() (map[string][]int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.cluster.Route(c.rng)
}

// Extract asks one node per shard concurrently. Counts are summed and rows
// merged into one sorted union, whatever order the replies arrive in.
func (c *Client) Extract(ctx context.Context, query []int, materialize bool) (*ExtractResponse, error) {
	route, err := c.route()
	if err != nil {
		return nil, err
	}
	hosts := make([]string, 0, len(route))
	for host := range route {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)

	replies := make([]ExtractResponse, len(hosts))
	g, gctx := errgroup.WithContext(ctx)
	for i, host := range hosts {
		g.Go(func() error {
			request := ExtractRequest{Query: query, Sharding: route[host], Materialize: materialize}
			return RpcCall(gctx, host, "DataServer.Extract", request, &replies[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &ExtractResponse{}
	for _, r := range replies {
		result.Count += r.Count
		result.Rows = util.MergeInt(result.Rows, r.Rows)
	}
	c.logger.Debug("cluster extract", zap.Int("nodes", len(hosts)), zap.Int("count", result.Count))
	return result, nil
}
