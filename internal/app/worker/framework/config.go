package framework

import "time"

// SubscriberConfig 拉取端配置
type SubscriberConfig struct {
	QueueName    string
	Concurrency  int           // 并发拉取协程数
	Timeout      time.Duration // 单次拉取的长轮询超时
	TTR          time.Duration // 未 ACK 的任务在 TTR 后重新投递
	Rate         time.Duration // 两次拉取之间的间隔
	ErrorBackoff time.Duration
}

// ProcessorConfig 处理端配置
type ProcessorConfig struct {
	Concurrency int
	BufferSize  int
	Timeout     time.Duration // 单个任务处理超时
}

func (c SubscriberConfig) withDefaults() SubscriberConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.Timeout <= 0 {
		c.Timeout = 3 * time.Second
	}
	if c.TTR <= 0 {
		c.TTR = 30 * time.Second
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = time.Second
	}
	return c
}

func (c ProcessorConfig) withDefaults() ProcessorConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.BufferSize < 0 {
		c.BufferSize = 0
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return c
}
