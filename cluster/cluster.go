package cluster

import (
	"math/rand"
	"sort"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNoRoute means some shard is hosted by no data node.
	ErrNoRoute = errors.New("no data node hosts shard")
	// ErrUnknownShard means a shard id outside [0, ShardingNum).
	ErrUnknownShard = errors.New("unknown shard")
)

const (
	ManagerNode = 1
	DataNode    = 2
)

type Node struct {
	ID   int
	Type int
	Host string //ip:port

	LeaderSharding   []int //主分片
	FollowerSharding []int //备份分片
}

type Cluster struct {
	ShardingNum  int //分片数
	ReplicateNum int //数据备份数

	DataNodeCorpus map[string]Node
}

func NewCluster(shard, replicate int) *Cluster {
	return &Cluster{
		ShardingNum:    shard,
		ReplicateNum:   replicate,
		DataNodeCorpus: make(map[string]Node),
	}
}

func (c *Cluster) Add(node Node) error {
	switch node.Type {
	case DataNode:
		c.DataNodeCorpus[node.Host] = node
	default:
		return errors.Newf("invalid node type %d", node.Type)
	}
	return nil
}

// Clone copies c deeply enough to be encoded while c keeps changing.
func (c *Cluster) Clone() Cluster {
	out := *c
	out.DataNodeCorpus = make(map[string]Node, len(c.DataNodeCorpus))
	for k, n := range c.DataNodeCorpus {
		n.LeaderSharding = append([]int(nil), n.LeaderSharding...)
		n.FollowerSharding = append([]int(nil), n.FollowerSharding...)
		out.DataNodeCorpus[k] = n
	}
	return out
}

const (
	LeaderSharding   = 1
	FollowerSharding = 2
)

type Sharding2Node map[int][]Node

func (c *Cluster) RouteShardingNode(flag int) (Sharding2Node, error) {
	result := make(Sharding2Node)
	for _, node := range c.DataNodeCorpus {
		switch flag {
		case LeaderSharding:
			for _, shard := range node.LeaderSharding {
				result[shard] = append(result[shard], node)
			}
		case FollowerSharding:
			for _, shard := range node.FollowerSharding {
				result[shard] = append(result[shard], node)
			}
		default:
			return nil, errors.Newf("invalid sharding flag %d", flag)
		}
	}
	return result, nil
}

// Route picks one host for every shard, a follower when one exists so that
// leaders keep their capacity, and groups the shards by host. Shard lists
// are ascending.
func (c *Cluster) Route(rng *rand.Rand) (map[string][]int, error) {
	followers, err := c.RouteShardingNode(FollowerSharding)
	if err != nil {
		return nil, err
	}
	leaders, err := c.RouteShardingNode(LeaderSharding)
	if err != nil {
		return nil, err
	}

	route := make(map[string][]int)
	for shard := 0; shard < c.ShardingNum; shard++ {
		nodes := followers[shard]
		if len(nodes) == 0 {
			nodes = leaders[shard]
		}
		if len(nodes) == 0 {
			return nil, errors.Wrapf(ErrNoRoute, "shard %d", shard)
		}
		// map iteration order is random, sort before drawing
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].Host < nodes[j].Host })
		host := nodes[rng.Intn(len(nodes))].Host
		route[host] = append(route[host], shard)
	}
	return route, nil
}
