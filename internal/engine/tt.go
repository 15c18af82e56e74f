package engine

import "chessbot/internal/chess"

// Bound 标记条目分数的性质
type Bound uint8

const (
	Exact Bound = iota // 走完全部着法且抬高了 alpha
	Upper              // 全部着法都没超过 alpha，真实值 <= Score
)

// Entry 是置换表条目。Score 用负极大值符号（相对该节点走子方），杀棋分按节点距离存。
type Entry struct {
	Depth int
	Score int
	Best  chess.Move
	Bound Bound
}

// Table 是单线程使用的置换表，只在一次 Think 内部访问，不加锁。
type Table struct {
	policy   TablePolicy
	capacity int
	m        map[uint64]Entry
}

func NewTable(policy TablePolicy, capacity int) *Table {
	if capacity <= 0 {
		capacity = DefaultConfig().TableCapacity
	}
	return &Table{
		policy:   policy,
		capacity: capacity,
		m:        make(map[uint64]Entry, min(capacity, 1<<16)),
	}
}

func (t *Table) Lookup(hash uint64) (Entry, bool) {
	e, ok := t.m[hash]
	return e, ok
}

func (t *Table) Store(hash uint64, e Entry) {
	old, ok := t.m[hash]
	if ok {
		switch t.policy {
		case FirstWriterWins:
			return
		case DepthPreferred:
			if e.Depth < old.Depth {
				return
			}
		}
	} else if len(t.m) >= t.capacity {
		// 满了直接清空重来
		t.Clear()
	}
	t.m[hash] = e
}

func (t *Table) Len() int {
	return len(t.m)
}

func (t *Table) Clear() {
	clear(t.m)
}
