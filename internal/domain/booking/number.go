package booking

import (
	"fmt"
	"math/rand"
	"time"
)

const numberSuffixChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateBookingNumber は利用者向けの予約番号を生成する
// 形式: PK-<ミリ秒タイムスタンプ>-<英数6文字>
// 一意性は確率的であり、衝突はストアの一意制約で検出される
func GenerateBookingNumber() string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = numberSuffixChars[rand.Intn(len(numberSuffixChars))]
	}
	return fmt.Sprintf("PK-%d-%s", time.Now().UnixMilli(), suffix)
}
