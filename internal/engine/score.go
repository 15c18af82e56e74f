package engine

import "golang.org/x/exp/constraints"

const (
	// 比任何子力分都大得多
	MateScore = 1_000_000
	// 分数绝对值超过它就是杀棋分
	mateThreshold = MateScore - 2*maxSearchDepth - 64

	scoreInf = MateScore + 1
)

func abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

func IsMateScore(score int) bool {
	return abs(score) >= mateThreshold
}

// MateIn 把杀棋分换成“几步杀”：正数表示走子方将杀对方，负数表示被杀
func MateIn(score int) int {
	if !IsMateScore(score) {
		return 0
	}
	plies := MateScore - abs(score)
	moves := (plies + 1) / 2
	if score < 0 {
		return -moves
	}
	return moves
}

// 置换表里存的是相对节点的杀棋距离，读写时按 ply 换算
func toTableScore(score, ply int) int {
	switch {
	case score >= mateThreshold:
		return score + ply
	case score <= -mateThreshold:
		return score - ply
	}
	return score
}

func fromTableScore(score, ply int) int {
	switch {
	case score >= mateThreshold:
		return score - ply
	case score <= -mateThreshold:
		return score + ply
	}
	return score
}
