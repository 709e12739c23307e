// Package idgen 订单号生成
package idgen

import (
	"fmt"
	"sync"
	"time"
)

const (
	timeLayout   = "20060102150405"
	maxMachineID = 99
	maxSequence  = 999
)

// NumberGenerator 订单号生成器
// 格式：下单时间 yyyyMMddHHmmss + 机器号(2位) + 秒内序号(3位)，共 19 位
// 同一进程内严格递增；多实例部署时以机器号区分
type NumberGenerator struct {
	mu        sync.Mutex
	machineID int64
	sequence  int64
	lastSec   int64
	now       func() time.Time
}

// NewNumberGenerator machineID 超出 0-99 时按 0 处理
func NewNumberGenerator(machineID int64) *NumberGenerator {
	if machineID < 0 || machineID > maxMachineID {
		machineID = 0
	}
	return &NumberGenerator{
		machineID: machineID,
		now:       time.Now,
	}
}

// NextNumber 生成下一个订单号
func (g *NumberGenerator) NextNumber() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	sec := now.Unix()
	switch {
	case sec > g.lastSec:
		g.sequence = 0
	case g.sequence < maxSequence:
		// 同一秒或时钟回拨：沿用上一秒继续递增
		sec = g.lastSec
		g.sequence++
	default:
		// 本秒序号用尽，借用下一秒
		sec = g.lastSec + 1
		g.sequence = 0
	}
	g.lastSec = sec

	ts := time.Unix(sec, 0).In(now.Location()).Format(timeLayout)
	return fmt.Sprintf("%s%02d%03d", ts, g.machineID, g.sequence)
}
