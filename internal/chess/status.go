package chess

import (
	"math/bits"
)

const fiftyMoveLimit = 100

const (
	lightSquares uint64 = 0x55AA55AA55AA55AA
	darkSquares  uint64 = ^lightSquares
)

// Status 是局面的终局状态
type Status int8

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
	DrawFiftyMove
	DrawMaterial
	DrawRepetition
)

func (s Status) String() string {
	switch s {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case DrawFiftyMove:
		return "fifty_move"
	case DrawMaterial:
		return "insufficient_material"
	case DrawRepetition:
		return "repetition"
	default:
		return "ongoing"
	}
}

func (s Status) IsDraw() bool {
	return s >= Stalemate
}

// Status 只生成一次着法就判定将死 / 和棋
func (p *Position) Status() Status {
	if len(p.board.GenerateLegalMoves()) == 0 {
		if p.InCheck() {
			return Checkmate
		}
		return Stalemate
	}
	return p.drawStatus()
}

func (p *Position) drawStatus() Status {
	if p.IsRepetition() {
		return DrawRepetition
	}
	if p.quiet >= fiftyMoveLimit {
		return DrawFiftyMove
	}
	if p.insufficientMaterial() {
		return DrawMaterial
	}
	return Ongoing
}

func (p *Position) IsCheckmate() bool {
	return p.InCheck() && len(p.board.GenerateLegalMoves()) == 0
}

// IsDraw 包括逼和、五十步、子力不足和重复局面
func (p *Position) IsDraw() bool {
	return p.Status().IsDraw()
}

// IsRepetition 当前局面在可逆着法范围内是否已经出现过（搜索里出现一次即按和棋处理）
func (p *Position) IsRepetition() bool {
	h := p.board.Hash()
	limit := p.quiet
	n := len(p.history)
	// 同一方走棋的局面间隔两步
	for back := 2; back <= limit && back <= n; back += 2 {
		if p.history[n-back] == h {
			return true
		}
	}
	return false
}

func (p *Position) insufficientMaterial() bool {
	w, b := &p.board.White, &p.board.Black
	if w.Pawns|b.Pawns|w.Rooks|b.Rooks|w.Queens|b.Queens != 0 {
		return false
	}
	minors := bits.OnesCount64(w.Knights | w.Bishops | b.Knights | b.Bishops)
	if minors <= 1 {
		return true
	}
	// 只剩同色格象
	if w.Knights|b.Knights == 0 {
		bishops := w.Bishops | b.Bishops
		return bishops&lightSquares == 0 || bishops&darkSquares == 0
	}
	return false
}
