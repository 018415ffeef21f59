package cluster

import (
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/serialx/hashring"
	"go.uber.org/zap"

	"github.com/awesomefly/easyextract/config"
	"github.com/awesomefly/easyextract/util"
)

// ManagerServer keeps the cluster membership and places every column shard
// on ReplicateNum data nodes with a consistent hash ring.
type ManagerServer struct {
	lock    sync.Mutex
	cluster *Cluster
	hash    *hashring.HashRing

	server *Server
	logger *zap.Logger
}

func NewManagerServer(conf *config.Config, logger *zap.Logger) *ManagerServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &ManagerServer{
		cluster: NewCluster(conf.Cluster.ShardingNum, conf.Cluster.ReplicateNum),
		hash:    hashring.New(make([]string, 0)),
		server:  newServer("Manage", conf.Server.Address(), logger),
		logger:  logger,
	}
	return srv
}

// Start listens and serves in the background.
func (m *ManagerServer) Start() error {
	if err := m.server.RegisterName("ManagerServer", m); err != nil {
		return err
	}
	if err := m.server.Listen(); err != nil {
		return err
	}
	go func() {
		if err := m.server.Serve(); err != nil {
			m.logger.Error("manager server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Run serves until a termination signal.
func (m *ManagerServer) Run() error {
	if err := m.server.RegisterName("ManagerServer", m); err != nil {
		return err
	}
	return m.server.Run()
}

func (m *ManagerServer) Addr() string { return m.server.Addr() }

func (m *ManagerServer) Stop() error { return m.server.Stop() }

// AddServer called by DataServer
func (m *ManagerServer) AddServer(request Node, response *Node) error {
	m.logger.Info("AddServer", zap.String("host", request.Host), zap.Int("type", request.Type))

	m.lock.Lock()
	defer m.lock.Unlock()

	_, known := m.cluster.DataNodeCorpus[request.Host]
	if err := m.cluster.Add(request); err != nil {
		return err
	}
	if !known {
		m.hash = m.hash.AddNode(request.Host)
	}
	if err := m.ReBalance(); err != nil {
		return err
	}
	*response = m.cluster.Clone().DataNodeCorpus[request.Host]
	return nil
}

// GetCluster called by DataServer and Client
func (m *ManagerServer) GetCluster(request string, response *Cluster) error {
	m.logger.Debug("GetCluster", zap.String("from", request))

	m.lock.Lock()
	defer m.lock.Unlock()
	*response = m.cluster.Clone()
	return nil
}

// ReBalance reassigns every shard to a leader and ReplicateNum-1 followers,
// or to every node when there are fewer. The caller holds m.lock.
func (m *ManagerServer) ReBalance() error {
	for k, node := range m.cluster.DataNodeCorpus {
		node.LeaderSharding = make([]int, 0)
		node.FollowerSharding = make([]int, 0)
		m.cluster.DataNodeCorpus[k] = node
	}

	size := util.IfElseInt(len(m.cluster.DataNodeCorpus) < m.cluster.ReplicateNum, len(m.cluster.DataNodeCorpus), m.cluster.ReplicateNum)
	if size == 0 {
		return nil
	}
	for i := 0; i < m.cluster.ShardingNum; i++ {
		nodes, ok := m.hash.GetNodes(fmt.Sprint(i), size)
		if !ok {
			return errors.Newf("get nodes of shard %d: invalid replicated num %d", i, size)
		}
		if len(nodes) < size {
			return errors.Newf("unexpected nodes size %d, want %d", len(nodes), size)
		}

		n := m.cluster.DataNodeCorpus[nodes[0]]
		n.LeaderSharding = append(n.LeaderSharding, i)
		m.cluster.DataNodeCorpus[n.Host] = n
		for _, k := range nodes[1:] {
			n = m.cluster.DataNodeCorpus[k]
			n.FollowerSharding = append(n.FollowerSharding, i)
			m.cluster.DataNodeCorpus[n.Host] = n
		}
	}
	m.logger.Info("rebalanced", zap.Int("nodes", len(m.cluster.DataNodeCorpus)), zap.Int("shards", m.cluster.ShardingNum))
	return nil
}
