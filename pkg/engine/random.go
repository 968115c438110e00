package engine

import (
	"hash/fnv"
	"math/rand"
)

// NewTieBreakRand 创建确定性的平分决胜随机源
// 种子由 (tieBreakSeed, 目标日期) 哈希得到，相同输入产生相同序列。
// 每日派工的比较链以员工ID收尾、本身即全序，随机源仅用于
// 自动补班中同分候选人的次序打散。
func NewTieBreakRand(seed, date string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(seed))
	h.Write([]byte{'|'})
	h.Write([]byte(date))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}
