package chess

import (
	"strconv"
	"strings"

	dragon "github.com/dylhunn/dragontoothmg"
	"github.com/pkg/errors"
)

const InitialFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	ErrBadFEN      = errors.New("invalid fen")
	ErrIllegalMove = errors.New("illegal move")
)

func NewInitialPosition() *Position {
	return newPosition(dragon.ParseFen(InitialFEN), 0)
}

// DecodePosition 从 FEN 还原局面。半回合计数和回合数缺省时补 "0 1"。
func DecodePosition(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) == 4 {
		fields = append(fields, "0", "1")
	}
	if len(fields) != 6 {
		return nil, errors.Wrapf(ErrBadFEN, "%q: expected 6 fields, got %d", fen, len(fields))
	}
	if err := checkPlacement(fields[0]); err != nil {
		return nil, errors.Wrapf(err, "%q", fen)
	}
	if fields[1] != "w" && fields[1] != "b" {
		return nil, errors.Wrapf(ErrBadFEN, "%q: side to move %q", fen, fields[1])
	}
	if err := checkEnPassant(fields[3], fields[1]); err != nil {
		return nil, errors.Wrapf(err, "%q", fen)
	}
	quiet, err := strconv.Atoi(fields[4])
	if err != nil || quiet < 0 || quiet > maxHalfmoveClock {
		return nil, errors.Wrapf(ErrBadFEN, "%q: halfmove clock %q", fen, fields[4])
	}
	if n, err := strconv.Atoi(fields[5]); err != nil || n < 0 || n > maxFullmove {
		return nil, errors.Wrapf(ErrBadFEN, "%q: fullmove number %q", fen, fields[5])
	}
	pos := newPosition(dragon.ParseFen(strings.Join(fields, " ")), quiet)
	if err := pos.checkCastling(fields[2]); err != nil {
		return nil, errors.Wrapf(err, "%q", fen)
	}
	return pos, nil
}

// dragontooth 用 uint8 / uint16 存这两个计数
const (
	maxHalfmoveClock = 255
	maxFullmove      = 65535
)

// checkEnPassant 吃过路兵格只能是 "-"，或者白方走时在第 6 行、黑方走时在第 3 行
func checkEnPassant(ep, side string) error {
	if ep == "-" {
		return nil
	}
	rank := byte('6')
	if side == "b" {
		rank = '3'
	}
	if len(ep) != 2 || ep[0] < 'a' || ep[0] > 'h' || ep[1] != rank {
		return errors.Wrapf(ErrBadFEN, "en passant square %q", ep)
	}
	return nil
}

// 王车易位权对应的王、车初始格（a1=0 … h8=63）
var castleSquares = []struct {
	flag       byte
	side       Side
	king, rook uint8
}{
	{'K', White, 4, 7},
	{'Q', White, 4, 0},
	{'k', Black, 60, 63},
	{'q', Black, 60, 56},
}

// checkCastling 易位权必须按 KQkq 顺序出现，且王和车都还在原位
func (p *Position) checkCastling(rights string) error {
	if rights == "-" {
		return nil
	}
	next := 0
	for i := 0; i < len(rights); i++ {
		for next < len(castleSquares) && castleSquares[next].flag != rights[i] {
			next++
		}
		if next == len(castleSquares) {
			return errors.Wrapf(ErrBadFEN, "castling rights %q", rights)
		}
		cs := castleSquares[next]
		next++
		if k, s := p.PieceAt(cs.king); k != King || s != cs.side {
			return errors.Wrapf(ErrBadFEN, "castling right %c without king in place", cs.flag)
		}
		if k, s := p.PieceAt(cs.rook); k != Rook || s != cs.side {
			return errors.Wrapf(ErrBadFEN, "castling right %c without rook in place", cs.flag)
		}
	}
	return nil
}

func checkPlacement(placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return errors.Wrapf(ErrBadFEN, "expected 8 ranks, got %d", len(ranks))
	}
	kings := map[rune]int{}
	for i, rank := range ranks {
		files := 0
		for _, c := range rank {
			switch {
			case c >= '1' && c <= '8':
				files += int(c - '0')
			case strings.ContainsRune("pnbrqkPNBRQK", c):
				files++
				if c == 'k' || c == 'K' {
					kings[c]++
				}
			default:
				return errors.Wrapf(ErrBadFEN, "rank %d: unexpected %q", 8-i, c)
			}
		}
		if files != 8 {
			return errors.Wrapf(ErrBadFEN, "rank %d has %d files", 8-i, files)
		}
	}
	if kings['K'] != 1 || kings['k'] != 1 {
		return errors.Wrap(ErrBadFEN, "each side needs exactly one king")
	}
	return nil
}

// Encode 返回当前局面的 FEN
func (p *Position) Encode() string {
	return p.board.ToFen()
}

// FindMove 在合法着法里查找 UCI 记法（如 e2e4、e7e8q）对应的着法
func (p *Position) FindMove(uci string) (Move, error) {
	uci = strings.ToLower(strings.TrimSpace(uci))
	for _, mv := range p.LegalMoves(false) {
		if mv.String() == uci {
			return mv, nil
		}
	}
	return NullMove, errors.Wrapf(ErrIllegalMove, "%s in %s", uci, p.Encode())
}

// PlayMoves 依次走一串 UCI 着法
func (p *Position) PlayMoves(moves ...string) error {
	for _, s := range moves {
		mv, err := p.FindMove(s)
		if err != nil {
			return err
		}
		p.Apply(mv)
	}
	return nil
}

// ParsePositionCommand 解析 UCI position 命令的参数：
//
//	startpos [moves e2e4 e7e5 ...]
//	fen <fen> [moves ...]
func ParsePositionCommand(arg string) (*Position, error) {
	parts := strings.Fields(arg)
	if len(parts) == 0 {
		return nil, errors.New("empty position command")
	}
	var pos *Position
	i := 0
	switch parts[0] {
	case "startpos":
		pos = NewInitialPosition()
		i = 1
	case "fen":
		end := 1
		for end < len(parts) && parts[end] != "moves" {
			end++
		}
		var err error
		pos, err = DecodePosition(strings.Join(parts[1:end], " "))
		if err != nil {
			return nil, err
		}
		i = end
	default:
		return nil, errors.Errorf("unknown position %q", parts[0])
	}
	if i < len(parts) {
		if parts[i] != "moves" {
			return nil, errors.Errorf("unexpected token %q", parts[i])
		}
		if err := pos.PlayMoves(parts[i+1:]...); err != nil {
			return nil, errors.Wrap(err, "replay moves")
		}
	}
	return pos, nil
}
