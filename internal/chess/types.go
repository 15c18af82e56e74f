package chess

import (
	dragon "github.com/dylhunn/dragontoothmg"
)

type Side int8

const (
	White Side = 0
	Black Side = 1
)

func (s Side) Opponent() Side {
	return s ^ 1
}

func (s Side) String() string {
	if s == White {
		return "white"
	}
	return "black"
}

// PieceKind 的取值与估值表下标一致：兵、马、象、车、后、王
type PieceKind int8

const (
	NoPiece PieceKind = -1
	Pawn    PieceKind = 0
	Knight  PieceKind = 1
	Bishop  PieceKind = 2
	Rook    PieceKind = 3
	Queen   PieceKind = 4
	King    PieceKind = 5
)

const NumPieceKinds = 6

func (k PieceKind) String() string {
	if k < 0 || k >= NumPieceKinds {
		return "-"
	}
	return "pnbrqk"[k : k+1]
}

// Move 是一个带标志位的着法。Raw 是底层走子库的编码，其余字段在生成时解出。
type Move struct {
	Raw       dragon.Move
	Piece     PieceKind
	Captured  PieceKind
	Target    uint8
	Promotion bool
	Castle    bool
	Capture   bool
}

// NullMove 表示“没有着法”（无子可动时返回）
var NullMove = Move{Piece: NoPiece, Captured: NoPiece}

func (m Move) IsNull() bool {
	return m == NullMove
}

// String 返回 UCI 长代数记法，空着为 "0000"
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	raw := m.Raw
	return raw.String()
}
