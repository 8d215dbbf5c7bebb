package utils

import (
	"math"
	"time"
)

// HotDecaySeconds 每 45000 秒（12.5 小时）的时间差相当于一个数量级的票数
const HotDecaySeconds = 45000.0

// HotScore 热度分数 = log10(max(1, |votes|)) + 距 Unix 纪元的秒数 / 45000
// 票数为 0 或 ±1 时对数项为 0，新帖天然排在同票数旧帖之前
func HotScore(votes int, createdAt time.Time) float64 {
	magnitude := math.Max(1, math.Abs(float64(votes)))
	seconds := float64(createdAt.Unix()) + float64(createdAt.Nanosecond())/1e9
	return math.Log10(magnitude) + seconds/HotDecaySeconds
}
