package config

import (
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"

	"github.com/awesomefly/easyextract/index"
	"github.com/awesomefly/easyextract/matrix"
)

// ErrInvalid marks every validation failure.
var ErrInvalid = errors.New("invalid config")

type Matrix struct {
	NRow    int     `yaml:"NRow"`
	NCol    int     `yaml:"NCol"`
	Density float64 `yaml:"Density"`
	Seed    int64   `yaml:"Seed"`
}

func (m Matrix) Spec() matrix.Spec {
	return matrix.Spec{NRow: m.NRow, NCol: m.NCol, Density: m.Density, Seed: m.Seed}
}

// Query selects target rows as fractions of NRow.
type Query struct {
	Start float64 `yaml:"Start"`
	End   float64 `yaml:"End"`
	Step  int     `yaml:"Step"`
}

type Strategy struct {
	// Name is auto, merge, binary, galloping or lookup.
	Name      string  `yaml:"Name"`
	Crossover float64 `yaml:"Crossover"`
	// LookupBudget caps the bytes of the presence table built per query; 0 disables it.
	LookupBudget int `yaml:"LookupBudget"`
	// Workers is the number of columns searched concurrently; 0 or 1 is serial.
	Workers int `yaml:"Workers"`
}

type Server struct {
	Host string `yaml:"Host"`
	Port int    `yaml:"Port"`
}

func (s Server) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type Cluster struct {
	ShardingNum  int      `yaml:"ShardingNum"`
	ReplicateNum int      `yaml:"ReplicateNum"`
	ManageServer Server   `yaml:"ManageServer"`
	DataServer   []Server `yaml:"DataServer"`
}

type Log struct {
	Level  string `yaml:"Level"`
	Format string `yaml:"Format"` // json or console
}

type Bench struct {
	Repeat int `yaml:"Repeat"`
}

type Config struct {
	Matrix   Matrix   `yaml:"Matrix"`
	Query    Query    `yaml:"Query"`
	Strategy Strategy `yaml:"Strategy"`
	Server   Server   `yaml:"Server"`
	Cluster  Cluster  `yaml:"Cluster"`
	Log      Log      `yaml:"Log"`
	Bench    Bench    `yaml:"Bench"`
}

func Default() *Config {
	return &Config{
		Matrix:   Matrix{NRow: 50000, NCol: 10000, Density: 0.1, Seed: 1234567},
		Query:    Query{Start: 0, End: 1, Step: 10},
		Strategy: Strategy{Name: "auto", Crossover: index.DefaultCrossover, Workers: 1},
		Server:   Server{Host: "127.0.0.1", Port: 1234},
		Cluster:  Cluster{ShardingNum: 1, ReplicateNum: 1},
		Log:      Log{Level: "info", Format: "console"},
		Bench:    Bench{Repeat: 1},
	}
}

// InitConfig reads the YAML file at path over Default and validates it.
func InitConfig(path string) (*Config, error) {
	file, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config path %q", path)
	}
	buffer, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return Parse(buffer)
}

// Parse decodes YAML over Default and validates the result.
func Parse(buffer []byte) (*Config, error) {
	conf := Default()
	if err := yaml.UnmarshalStrict(buffer, conf); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func invalid(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalid)
}

// Validate reports the first inconsistent setting, marked with ErrInvalid.
func (c *Config) Validate() error {
	m := c.Matrix
	if m.NRow <= 0 || m.NCol <= 0 {
		return invalid("matrix must have rows and columns, got %d x %d", m.NRow, m.NCol)
	}
	if !(m.Density >= 0 && m.Density <= 1) {
		return invalid("density %v outside [0, 1]", m.Density)
	}

	q := c.Query
	if q.Step <= 0 {
		return invalid("query step %d must be positive", q.Step)
	}
	if q.Start < 0 || q.Start > q.End {
		return invalid("query range [%v, %v) is empty or negative", q.Start, q.End)
	}

	s := c.Strategy
	if _, ok := index.ParseStrategy(s.Name); !ok {
		return invalid("unknown strategy %q", s.Name)
	}
	if !(s.Crossover > 0) {
		return invalid("crossover %v must be positive", s.Crossover)
	}
	if s.LookupBudget < 0 || s.Workers < 0 {
		return invalid("lookup budget %d and workers %d must not be negative", s.LookupBudget, s.Workers)
	}

	if c.Cluster.ShardingNum <= 0 || c.Cluster.ReplicateNum <= 0 {
		return invalid("cluster needs at least one shard and one replica, got %d and %d",
			c.Cluster.ShardingNum, c.Cluster.ReplicateNum)
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Mark(errors.Wrap(err, "log level"), ErrInvalid)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return invalid("log format %q is neither json nor console", c.Log.Format)
	}

	if c.Bench.Repeat <= 0 {
		return invalid("bench repeat %d must be positive", c.Bench.Repeat)
	}
	return nil
}

// Kind returns the strategy named by Name. Validate must have passed.
func (s Strategy) Kind() index.Strategy {
	st, _ := index.ParseStrategy(s.Name)
	return st
}
