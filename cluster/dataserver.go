package cluster

import (
	"context"
	"math/rand"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/awesomefly/easyextract/config"
	"github.com/awesomefly/easyextract/index"
	"github.com/awesomefly/easyextract/matrix"
	"github.com/awesomefly/easyextract/search"
	"github.com/awesomefly/easyextract/util"
)

type ExtractRequest struct {
	Query       []int
	Sharding    []int
	Materialize bool
}

type ExtractResponse struct {
	Count int
	// Rows is the sorted distinct union of matched rows. Only set when
	// materializing.
	Rows []int
}

// DataServer answers extraction requests for column shards. Shards are
// regenerated from the matrix spec on first use, so a node can serve any
// shard the manager routes to it.
type DataServer struct {
	self    Node
	cluster Cluster

	conf    *config.Config
	spec    matrix.Spec
	manager string

	lock     sync.Mutex
	sharding map[int]*search.Searcher
	server   *Server
	logger   *zap.Logger
}

func NewDataServer(conf *config.Config, logger *zap.Logger) *DataServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataServer{
		self: Node{
			ID:   rand.Intn(10000),
			Type: DataNode,
			Host: conf.Server.Address(),
		},
		conf:     conf,
		spec:     conf.Matrix.Spec(),
		manager:  conf.Cluster.ManageServer.Address(),
		sharding: make(map[int]*search.Searcher),
		server:   newServer("Data", conf.Server.Address(), logger),
		logger:   logger,
	}
}

// Join listens, registers with the manager under the bound address and
// loads the shards it was assigned.
func (s *DataServer) Join(ctx context.Context) error {
	if err := s.server.RegisterName("DataServer", s); err != nil {
		return err
	}
	if err := s.server.Listen(); err != nil {
		return err
	}
	s.self.Host = s.server.Addr()

	n := Node{}
	if err := RpcCall(ctx, s.manager, "ManagerServer.AddServer", s.self, &n); err != nil {
		return errors.Wrap(err, "join cluster")
	}
	s.self = n

	c := Cluster{}
	if err := RpcCall(ctx, s.manager, "ManagerServer.GetCluster", s.self.Host, &c); err != nil {
		return errors.Wrap(err, "get cluster")
	}
	s.cluster = c

	for _, shard := range append(append([]int(nil), s.self.LeaderSharding...), s.self.FollowerSharding...) {
		if _, err := s.shard(ctx, shard); err != nil {
			return err
		}
	}
	return nil
}

// Start serves in the background after Join.
func (s *DataServer) Start() {
	go func() {
		if err := s.server.Serve(); err != nil {
			s.logger.Error("data server stopped", zap.Error(err))
		}
	}()
}

// Run serves until a termination signal. Join must have succeeded.
func (s *DataServer) Run() error { return s.server.Run() }

func (s *DataServer) Addr() string { return s.server.Addr() }

func (s *DataServer) Stop() error { return s.server.Stop() }

// Self returns the node as last registered.
func (s *DataServer) Self() Node { return s.self }

func (s *DataServer) shard(ctx context.Context, shard int) (*search.Searcher, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if srh, ok := s.sharding[shard]; ok {
		return srh, nil
	}
	m, err := LoadShard(ctx, s.spec, s.cluster.ShardingNum, shard, s.logger)
	if err != nil {
		return nil, err
	}

	st := s.conf.Strategy
	srh := search.NewSearcher(m,
		search.WithStrategy(st.Kind()),
		search.WithSelector(index.Selector{Crossover: st.Crossover}),
		search.WithLookupBudget(st.LookupBudget),
		search.WithWorkers(st.Workers),
		search.WithLogger(s.logger))
	s.sharding[shard] = srh
	return srh, nil
}

// Extract intersects the query with every column of the requested shards.
func (s *DataServer) Extract(request ExtractRequest, response *ExtractResponse) error {
	ctx := context.Background()
	query := index.PostingList(request.Query)
	if !query.Valid() {
		return errors.New("query rows must be strictly increasing and non-negative")
	}

	result := ExtractResponse{}
	for _, shard := range request.Sharding {
		srh, err := s.shard(ctx, shard)
		if err != nil {
			return err
		}
		x, err := srh.Search(ctx, search.Request{Query: query, Materialize: request.Materialize})
		if err != nil {
			return err
		}
		result.Count += x.Count
		if request.Materialize {
			result.Rows = util.MergeInt(result.Rows, x.Rows)
		}
	}
	*response = result
	return nil
}
