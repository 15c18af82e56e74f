package engine

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
)

// TablePolicy 决定置换表里同一个 key 的新旧条目谁留下
type TablePolicy string

const (
	FirstWriterWins TablePolicy = "first_writer_wins"
	AlwaysReplace   TablePolicy = "always_replace"
	DepthPreferred  TablePolicy = "depth_preferred"
)

// HintScope 决定上一层迭代的最佳着法在哪些节点被提到最前
type HintScope string

const (
	HintRoot HintScope = "root"
	HintAll  HintScope = "all"
)

const maxSearchDepth = 64

type Config struct {
	TimeBudgetMs int  `json:"time_budget_ms"`
	MaxDepth     int  `json:"max_depth"` // 0 表示只受时间限制
	Quiescence   bool `json:"quiescence"`

	// 估值
	PieceValues    [6]int `json:"piece_values"` // 兵 马 象 车 后 王
	MobilityWeight int    `json:"mobility_weight"`

	// 着法排序
	PromotionBonus      int `json:"promotion_bonus"`
	CastleBonus         int `json:"castle_bonus"`
	CaptureMoverDivisor int `json:"capture_mover_divisor"`
	AttackedDivisor     int `json:"attacked_divisor"`

	// 置换表
	UseTable      bool        `json:"use_table"`
	TablePolicy   TablePolicy `json:"table_policy"`
	TableCapacity int         `json:"table_capacity"`
	PersistTable  bool        `json:"persist_table"`

	HintScope HintScope `json:"hint_scope"`
}

func DefaultConfig() Config {
	return Config{
		TimeBudgetMs: 3000,
		MaxDepth:     0,
		Quiescence:   true,

		PieceValues:    [6]int{100, 300, 300, 500, 900, 10000},
		MobilityWeight: 2,

		PromotionBonus:      700,
		CastleBonus:         200,
		CaptureMoverDivisor: 10,
		AttackedDivisor:     5,

		UseTable:      true,
		TablePolicy:   DepthPreferred,
		TableCapacity: 1 << 20,
		PersistTable:  false,

		HintScope: HintRoot,
	}
}

func (c Config) TimeBudget() time.Duration {
	return time.Duration(c.TimeBudgetMs) * time.Millisecond
}

// depthLimit 把 MaxDepth=0 展开成搜索上限
func (c Config) depthLimit() int {
	if c.MaxDepth <= 0 || c.MaxDepth > maxSearchDepth {
		return maxSearchDepth
	}
	return c.MaxDepth
}

func (c Config) Validate() error {
	if c.TimeBudgetMs <= 0 {
		return errors.Errorf("time_budget_ms must be positive, got %d", c.TimeBudgetMs)
	}
	if c.MaxDepth < 0 || c.MaxDepth > maxSearchDepth {
		return errors.Errorf("max_depth must be in [0, %d], got %d", maxSearchDepth, c.MaxDepth)
	}
	for i, v := range c.PieceValues {
		if v <= 0 {
			return errors.Errorf("piece_values[%d] must be positive, got %d", i, v)
		}
	}
	if c.MobilityWeight < 0 {
		return errors.Errorf("mobility_weight must be >= 0, got %d", c.MobilityWeight)
	}
	if c.CaptureMoverDivisor <= 0 || c.AttackedDivisor <= 0 {
		return errors.New("ordering divisors must be positive")
	}
	switch c.TablePolicy {
	case FirstWriterWins, AlwaysReplace, DepthPreferred:
	default:
		return errors.Errorf("unknown table_policy %q", c.TablePolicy)
	}
	if c.TableCapacity <= 0 {
		return errors.Errorf("table_capacity must be positive, got %d", c.TableCapacity)
	}
	switch c.HintScope {
	case HintRoot, HintAll:
	default:
		return errors.Errorf("unknown hint_scope %q", c.HintScope)
	}
	return nil
}

// LoadConfig 读 JSON 配置；文件里没写的字段保持默认值
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrap(err, "open config")
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, errors.Wrapf(err, "decode config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}
