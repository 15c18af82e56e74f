package chess

import (
	"math/bits"

	dragon "github.com/dylhunn/dragontoothmg"
)

type undoEntry struct {
	unapply   func()
	move      Move
	prevQuiet int
}

// Position = 棋盘 + 走子栈 + 历史哈希（用来判重复局面）
//
// Apply / Revert 必须严格成对，像栈一样嵌套。
type Position struct {
	board   dragon.Board
	stack   []undoEntry
	history []uint64 // 当前局面之前出现过的所有局面哈希（对局 + 搜索路径）
	quiet   int      // 距上一次吃子或动兵的半回合数
}

// Snapshot 是局面的完整可比较状态，用于校验 Apply/Revert 之后局面未被破坏。
type Snapshot struct {
	Board   dragon.Board
	Plies   int
	History int
	Quiet   int
}

func newPosition(b dragon.Board, quiet int) *Position {
	return &Position{
		board:   b,
		stack:   make([]undoEntry, 0, 64),
		history: make([]uint64, 0, 256),
		quiet:   quiet,
	}
}

func (p *Position) SideToMove() Side {
	if p.board.Wtomove {
		return White
	}
	return Black
}

func (p *Position) Hash() uint64 {
	return p.board.Hash()
}

// Plies 返回自构造以来 Apply 的层数（对局着法 + 搜索中的着法）
func (p *Position) Plies() int {
	return len(p.stack)
}

func (p *Position) Snapshot() Snapshot {
	return Snapshot{Board: p.board, Plies: len(p.stack), History: len(p.history), Quiet: p.quiet}
}

func (p *Position) InCheck() bool {
	return p.board.OurKingInCheck()
}

// IsSquareAttackedByOpponent 判断 sq 是否被对方直接攻击（以当前盘面为准）
func (p *Position) IsSquareAttackedByOpponent(sq uint8) bool {
	return p.board.UnderDirectAttack(p.board.Wtomove, sq)
}

// Apply 在原局面上走一步。mv 必须来自 LegalMoves。
func (p *Position) Apply(mv Move) {
	p.history = append(p.history, p.board.Hash())
	unapply := p.board.Apply(mv.Raw)
	p.stack = append(p.stack, undoEntry{unapply: unapply, move: mv, prevQuiet: p.quiet})
	if mv.Capture || mv.Piece == Pawn {
		p.quiet = 0
	} else {
		p.quiet++
	}
}

// Revert 撤销最近一次 Apply
func (p *Position) Revert() {
	n := len(p.stack)
	if n == 0 {
		panic("chess: Revert without matching Apply")
	}
	top := p.stack[n-1]
	top.unapply()
	p.quiet = top.prevQuiet
	p.stack = p.stack[:n-1]
	p.history = p.history[:len(p.history)-1]
}

// LastMove 返回最近一次 Apply 的着法
func (p *Position) LastMove() Move {
	if len(p.stack) == 0 {
		return NullMove
	}
	return p.stack[len(p.stack)-1].move
}

// Moves 返回从构造起走过的着法
func (p *Position) Moves() []Move {
	out := make([]Move, len(p.stack))
	for i, e := range p.stack {
		out[i] = e.move
	}
	return out
}

func (p *Position) own() *dragon.Bitboards {
	if p.board.Wtomove {
		return &p.board.White
	}
	return &p.board.Black
}

func (p *Position) opp() *dragon.Bitboards {
	if p.board.Wtomove {
		return &p.board.Black
	}
	return &p.board.White
}

func (p *Position) sideBoards(s Side) *dragon.Bitboards {
	if s == White {
		return &p.board.White
	}
	return &p.board.Black
}

// PieceCount 统计某方某兵种的数量
func (p *Position) PieceCount(s Side, k PieceKind) int {
	bb := p.sideBoards(s)
	return bits.OnesCount64(kindBitboard(bb, k))
}

// PieceAt 返回 sq 上的棋子，空格返回 (NoPiece, White)
func (p *Position) PieceAt(sq uint8) (PieceKind, Side) {
	if k := kindAt(&p.board.White, sq); k != NoPiece {
		return k, White
	}
	if k := kindAt(&p.board.Black, sq); k != NoPiece {
		return k, Black
	}
	return NoPiece, White
}

func kindBitboard(bb *dragon.Bitboards, k PieceKind) uint64 {
	switch k {
	case Pawn:
		return bb.Pawns
	case Knight:
		return bb.Knights
	case Bishop:
		return bb.Bishops
	case Rook:
		return bb.Rooks
	case Queen:
		return bb.Queens
	case King:
		return bb.Kings
	}
	return 0
}

func kindAt(bb *dragon.Bitboards, sq uint8) PieceKind {
	mask := uint64(1) << sq
	if bb.All&mask == 0 {
		return NoPiece
	}
	switch {
	case bb.Pawns&mask != 0:
		return Pawn
	case bb.Knights&mask != 0:
		return Knight
	case bb.Bishops&mask != 0:
		return Bishop
	case bb.Rooks&mask != 0:
		return Rook
	case bb.Queens&mask != 0:
		return Queen
	case bb.Kings&mask != 0:
		return King
	}
	return NoPiece
}

// decode 在走子之前解出着法的标志位
func (p *Position) decode(raw dragon.Move) Move {
	from, to := raw.From(), raw.To()
	mv := Move{
		Raw:       raw,
		Piece:     kindAt(p.own(), from),
		Captured:  kindAt(p.opp(), to),
		Target:    to,
		Promotion: raw.Promote() != dragon.Nothing,
	}
	// 吃过路兵：兵斜走到空格
	if mv.Piece == Pawn && mv.Captured == NoPiece && from%8 != to%8 {
		mv.Captured = Pawn
	}
	mv.Capture = mv.Captured != NoPiece
	if mv.Piece == King && (to == from+2 || from == to+2) {
		mv.Castle = true
	}
	return mv
}

// LegalMoves 生成全部合法着法；capturesOnly=true 时只保留吃子着法
func (p *Position) LegalMoves(capturesOnly bool) []Move {
	raws := p.board.GenerateLegalMoves()
	out := make([]Move, 0, len(raws))
	for _, raw := range raws {
		mv := p.decode(raw)
		if capturesOnly && !mv.Capture {
			continue
		}
		out = append(out, mv)
	}
	return out
}
